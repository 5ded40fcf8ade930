package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	// Validation paths never reach the agent, so a nil agent is fine here.
	return NewHandler(nil)
}

func TestHandleChatRejectsWrongMethod(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()
	h.HandleChat(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleChatRejectsEmptyMessage(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": ""}`))
	w := httptest.NewRecorder()
	h.HandleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleChatRejectsBadBody(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.HandleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleHistoryUnknownConversation(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history?conversation_id=missing", nil)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleClearUnknownConversation(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat/clear", strings.NewReader(`{"conversation_id": "missing"}`))
	w := httptest.NewRecorder()
	h.HandleClear(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCORSPreflights(t *testing.T) {
	h := newTestHandler()

	for _, path := range []string{"/api/chat", "/api/chat/history", "/api/chat/clear"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		w := httptest.NewRecorder()
		switch path {
		case "/api/chat":
			h.HandleChat(w, req)
		case "/api/chat/history":
			h.HandleHistory(w, req)
		case "/api/chat/clear":
			h.HandleClear(w, req)
		}
		if w.Code != http.StatusOK {
			t.Errorf("OPTIONS %s status = %d, want 200", path, w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("OPTIONS %s missing CORS header", path)
		}
	}
}
