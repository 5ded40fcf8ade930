package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mag7intel/pkg/core/prompt"
	"mag7intel/pkg/core/utils"
	"mag7intel/pkg/core/vectorstore"
)

// Source cites one retrieved chunk backing an answer.
type Source struct {
	Company    string  `json:"company"`
	FormType   string  `json:"form_type"`
	FilingDate string  `json:"filing_date"`
	Section    string  `json:"section"`
	SourceFile string  `json:"source_file"`
	Score      float64 `json:"score"`
}

// Answer is the structured response to one question.
type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
	Category   string   `json:"category"`
}

// Agent answers questions over the indexed filings.
type Agent struct {
	manager *Manager
	store   vectorstore.Store
}

// New creates an Agent over a provider manager and retrieval backend.
func New(manager *Manager, store vectorstore.Store) *Agent {
	return &Agent{manager: manager, store: store}
}

// Ask answers one question within a conversation. The conversation gains the
// user turn and the assistant turn regardless of retrieval outcome.
func (a *Agent) Ask(ctx context.Context, conv *Conversation, question string) (Answer, error) {
	cleaned, err := CleanQuery(question)
	if err != nil {
		return Answer{}, err
	}

	category := a.Classify(ctx, question)
	log.Printf("agent: query classified as %s", category)

	var results []vectorstore.SearchResult
	if topK := TopKForCategory(category); topK > 0 {
		results, err = a.store.Search(ctx, vectorstore.Query{Text: cleaned, TopK: topK})
		if err != nil {
			return Answer{}, fmt.Errorf("retrieval failed: %w", err)
		}
	}

	userPrompt := a.buildPrompt(conv, question, results)

	resp, err := a.manager.ExecutePrompt(ctx, "answerer", userPrompt, prompt.Get().SystemPrompt(prompt.ChatAnswerer), nil)
	if err != nil {
		return Answer{}, fmt.Errorf("answer generation failed: %w", err)
	}

	answer := a.parseAnswer(resp)
	answer.Category = category
	answer.Sources = sourcesFromResults(results)

	conv.Append("user", question)
	conv.Append("assistant", answer.Answer)
	return answer, nil
}

// buildPrompt folds retained history and retrieved context around the
// question.
func (a *Agent) buildPrompt(conv *Conversation, question string, results []vectorstore.SearchResult) string {
	var b strings.Builder

	if history := conv.History(); len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	if len(results) > 0 {
		b.WriteString("Context from SEC filings:\n")
		for i, r := range results {
			fmt.Fprintf(&b, "[%d] %s %s (%s, %s):\n%s\n\n",
				i+1, r.Fields["company"], r.Fields["form_type"],
				r.Fields["filing_date"], r.Fields["section"], r.Text)
		}
	}

	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

// parseAnswer decodes the model's JSON, degrading to the raw text with low
// confidence when decoding fails. Answer text that does not render as
// Markdown (blank output after fence stripping) gets zero confidence.
func (a *Agent) parseAnswer(resp string) Answer {
	cleaned := utils.CleanMarkdown(resp)

	var ans Answer
	if _, err := utils.SmartParse(cleaned, &ans); err == nil && ans.Answer != "" {
		ans.Answer = utils.CleanMarkdown(ans.Answer)
		return ans
	}

	fallback := Answer{Answer: strings.TrimSpace(cleaned), Confidence: 0.5}
	if !utils.ValidateMarkdown(fallback.Answer) {
		fallback.Confidence = 0
	}
	return fallback
}

func sourcesFromResults(results []vectorstore.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			Company:    r.Fields["company"],
			FormType:   r.Fields["form_type"],
			FilingDate: r.Fields["filing_date"],
			Section:    r.Fields["section"],
			SourceFile: r.Fields["source_file"],
			Score:      r.Score,
		})
	}
	return sources
}
