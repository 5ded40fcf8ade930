package agent

import (
	"context"
	"fmt"
	"testing"

	"mag7intel/pkg/core/llm"
	"mag7intel/pkg/core/vectorstore"
	"mag7intel/pkg/core/vectorstore/memory"
)

// scriptedProvider returns canned responses in call order.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.calls >= len(p.responses) {
		return "", fmt.Errorf("unexpected call %d", p.calls)
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func stubManager(p llm.Provider) *Manager {
	return &Manager{
		config:    Config{ActiveProvider: "stub"},
		providers: map[string]llm.Provider{"stub": p},
	}
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New(nil)
	_, err := s.Upsert(context.Background(), []vectorstore.UploadRecord{
		{
			ID:         "c1",
			ChunkText:  "Total net sales were 383.3 billion dollars for fiscal 2023 driven by services growth.",
			Company:    "AAPL",
			FormType:   "10-K",
			FilingDate: "2023-10-27",
			Section:    "REVENUE",
			SourceFile: "AAPL10-K2023-10-27_0000320193-23-000106.html",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAskRetrievalFlow(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"```json\n{\"category\": \"FINANCIAL_RAG\"}\n```",
		`{"answer": "Apple reported net sales of $383.3 billion in fiscal 2023.", "confidence": 0.9}`,
	}}
	qa := New(stubManager(provider), seededStore(t))
	conv := NewConversation()

	answer, err := qa.Ask(context.Background(), conv, "Apple revenue for fiscal 2023")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if answer.Category != CategoryFinancialRAG {
		t.Errorf("category = %s, want %s", answer.Category, CategoryFinancialRAG)
	}
	if answer.Answer != "Apple reported net sales of $383.3 billion in fiscal 2023." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", answer.Confidence)
	}

	if len(answer.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(answer.Sources))
	}
	src := answer.Sources[0]
	if src.Company != "AAPL" || src.FormType != "10-K" || src.Section != "REVENUE" {
		t.Errorf("source = %+v", src)
	}
	if src.Score <= 0 {
		t.Errorf("source score = %v, want > 0", src.Score)
	}

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("history holds %d messages, want 2", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "Apple revenue for fiscal 2023" {
		t.Errorf("user turn = %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != answer.Answer {
		t.Errorf("assistant turn = %+v", history[1])
	}
}

func TestAskGeneralSkipsRetrieval(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"category": "GENERAL_QUERY"}`,
		"Hello! Ask me about any covered company's filings.",
	}}
	qa := New(stubManager(provider), seededStore(t))
	conv := NewConversation()

	answer, err := qa.Ask(context.Background(), conv, "hello there friend")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if answer.Category != CategoryGeneral {
		t.Errorf("category = %s, want %s", answer.Category, CategoryGeneral)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("general query retrieved %d sources, want 0", len(answer.Sources))
	}
	// Non-JSON output takes the raw-text path.
	if answer.Answer != "Hello! Ask me about any covered company's filings." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", answer.Confidence)
	}
}

func TestAskRejectsShortQuery(t *testing.T) {
	qa := New(stubManager(&scriptedProvider{}), seededStore(t))

	if _, err := qa.Ask(context.Background(), NewConversation(), "a"); err != ErrQueryTooShort {
		t.Errorf("err = %v, want ErrQueryTooShort", err)
	}
}

func TestParseAnswer(t *testing.T) {
	a := &Agent{}

	tests := []struct {
		name           string
		resp           string
		wantAnswer     string
		wantConfidence float64
	}{
		{
			name:           "fenced json",
			resp:           "```json\n{\"answer\": \"Margins expanded.\", \"confidence\": 0.8}\n```",
			wantAnswer:     "Margins expanded.",
			wantConfidence: 0.8,
		},
		{
			name:           "plain text fallback",
			resp:           "Revenue grew nine percent.",
			wantAnswer:     "Revenue grew nine percent.",
			wantConfidence: 0.5,
		},
		{
			name:           "blank output",
			resp:           "   ",
			wantAnswer:     "",
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.parseAnswer(tt.resp)
			if got.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", got.Answer, tt.wantAnswer)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}
