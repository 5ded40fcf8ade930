package prompt

// Prompt ids used by the question-answering agent.
const (
	ChatClassifier = "chat.classifier"
	ChatAnswerer   = "chat.answerer"
)

const classifierPrompt = `You classify user questions about SEC filings of large technology companies.
Respond with a JSON object: {"category": "<CATEGORY>"}

Categories:
- FINANCIAL_RAG: a specific fact about one company (revenue, risk factors, a metric in one period)
- COMPARATIVE_ANALYSIS: comparing two or more companies
- TREND_ANALYSIS: evolution of a metric over multiple periods
- GENERAL_QUERY: greetings, meta questions, anything not answerable from filings

Return ONLY the JSON object.`

const answererPrompt = `You are a financial analyst answering questions from SEC filing excerpts.
Ground every claim in the provided context; if the context does not contain the answer, say so.
Respond with a JSON object:
{"answer": "<the answer>", "confidence": <0.0-1.0>}
Return ONLY the JSON object.`

func registerDefaults(r *Registry) {
	r.Register(&Template{
		ID:           ChatClassifier,
		Description:  "Classifies questions into retrieval categories",
		SystemPrompt: classifierPrompt,
		Version:      "1.0",
	})
	r.Register(&Template{
		ID:           ChatAnswerer,
		Description:  "Composes grounded answers from retrieved filing chunks",
		SystemPrompt: answererPrompt,
		Version:      "1.0",
	})
}
