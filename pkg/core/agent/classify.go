package agent

import (
	"context"
	"log"
	"strings"

	"mag7intel/pkg/core/prompt"
	"mag7intel/pkg/core/utils"
)

// Query categories. The category decides how wide retrieval casts: single
// facts need few chunks, cross-company and multi-period questions need more,
// and general chat needs none.
const (
	CategoryFinancialRAG = "FINANCIAL_RAG"
	CategoryComparative  = "COMPARATIVE_ANALYSIS"
	CategoryTrend        = "TREND_ANALYSIS"
	CategoryGeneral      = "GENERAL_QUERY"
)

// retrievalBreadth maps category to retrieval top-k.
var retrievalBreadth = map[string]int{
	CategoryFinancialRAG: 6,
	CategoryComparative:  10,
	CategoryTrend:        12,
	CategoryGeneral:      0,
}

type classification struct {
	Category string `json:"category"`
}

// Classify returns the query category, asking the LLM first and falling back
// to keyword heuristics when the call or its output fails.
func (a *Agent) Classify(ctx context.Context, query string) string {
	resp, err := a.manager.ExecutePrompt(ctx, "classifier", query, prompt.Get().SystemPrompt(prompt.ChatClassifier), nil)
	if err != nil {
		log.Printf("agent: classification call failed, using keywords: %v", err)
		return classifyByKeywords(query)
	}

	var c classification
	if _, err := utils.SmartParse(utils.CleanMarkdown(resp), &c); err != nil {
		return classifyByKeywords(query)
	}

	switch c.Category {
	case CategoryFinancialRAG, CategoryComparative, CategoryTrend, CategoryGeneral:
		return c.Category
	}
	return classifyByKeywords(query)
}

// classifyByKeywords is the no-LLM fallback.
func classifyByKeywords(query string) string {
	q := strings.ToLower(query)

	comparative := []string{"compare", "versus", " vs ", "vs.", "difference between", "better than", "higher than"}
	for _, kw := range comparative {
		if strings.Contains(q, kw) {
			return CategoryComparative
		}
	}

	trend := []string{"trend", "over time", "over the years", "growth", "historically", "evolution", "year over year", "change since"}
	for _, kw := range trend {
		if strings.Contains(q, kw) {
			return CategoryTrend
		}
	}

	financial := []string{"revenue", "income", "profit", "margin", "cash flow", "balance sheet",
		"risk", "expense", "earnings", "r&d", "sales", "10-k", "10-q", "filing",
		"apple", "microsoft", "amazon", "google", "alphabet", "meta", "nvidia", "tesla"}
	for _, kw := range financial {
		if strings.Contains(q, kw) {
			return CategoryFinancialRAG
		}
	}

	return CategoryGeneral
}

// TopKForCategory returns how many chunks to retrieve for a category.
func TopKForCategory(category string) int {
	if k, ok := retrievalBreadth[category]; ok {
		return k
	}
	return retrievalBreadth[CategoryFinancialRAG]
}
