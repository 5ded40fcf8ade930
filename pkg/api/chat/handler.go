// Package chat exposes the question-answering agent over HTTP. Conversations
// are tracked per conversation_id so clients keep context across requests.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"mag7intel/pkg/core/agent"
)

// Handler provides the chat endpoints.
type Handler struct {
	agent *agent.Agent

	mu            sync.Mutex
	conversations map[string]*agent.Conversation
}

// NewHandler creates a chat handler over an agent.
func NewHandler(a *agent.Agent) *Handler {
	return &Handler{
		agent:         a,
		conversations: make(map[string]*agent.Conversation),
	}
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse carries the structured answer back to the client.
type ChatResponse struct {
	ConversationID string         `json:"conversation_id"`
	Answer         string         `json:"answer"`
	Sources        []agent.Source `json:"sources"`
	Confidence     float64        `json:"confidence"`
	Category       string         `json:"category"`
}

// HandleChat answers one question within a conversation. An unknown or empty
// conversation_id starts a new conversation.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	conv := h.getOrCreate(req.ConversationID)

	answer, err := h.agent.Ask(r.Context(), conv, req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrQueryTooShort) {
			http.Error(w, "query too short", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(ChatResponse{
		ConversationID: conv.ID,
		Answer:         answer.Answer,
		Sources:        answer.Sources,
		Confidence:     answer.Confidence,
		Category:       answer.Category,
	})
}

// HandleHistory returns the retained messages of a conversation.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("conversation_id")
	conv, ok := h.lookup(id)
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"conversation_id": conv.ID,
		"messages":        conv.History(),
	})
}

// HandleClear drops a conversation's history.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, ok := h.lookup(req.ConversationID)
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}
	conv.Clear()
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}

func (h *Handler) getOrCreate(id string) *agent.Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id != "" {
		if conv, ok := h.conversations[id]; ok {
			return conv
		}
	}
	conv := agent.NewConversation()
	h.conversations[conv.ID] = conv
	return conv
}

func (h *Handler) lookup(id string) (*agent.Conversation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conv, ok := h.conversations[id]
	return conv, ok
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
