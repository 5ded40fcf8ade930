package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxHistoryMessages bounds retained conversation history. Older messages
// fall off the front; the retained window is what gets folded into prompts.
const MaxHistoryMessages = 10

// Message is one turn of a conversation.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is caller-owned dialogue state. The agent reads and appends
// to it but never stores it; each API client or CLI session holds its own.
type Conversation struct {
	mu       sync.Mutex
	ID       string
	messages []Message
}

// NewConversation creates an empty conversation with a fresh id.
func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString()}
}

// Append records a turn, evicting the oldest messages beyond the retention
// window.
func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if len(c.messages) > MaxHistoryMessages {
		c.messages = c.messages[len(c.messages)-MaxHistoryMessages:]
	}
}

// History returns a copy of the retained messages.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear drops all retained messages but keeps the conversation id.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
