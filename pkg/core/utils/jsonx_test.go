package utils

import "testing"

type answerPayload struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var out answerPayload
	input := `{"answer": "revenue was $383B", "confidence": 0.9}`

	if _, err := SmartParse(input, &out); err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if out.Answer != "revenue was $383B" || out.Confidence != 0.9 {
		t.Errorf("decoded %+v", out)
	}
}

func TestSmartParseRepairsTrailingComma(t *testing.T) {
	var out answerPayload
	input := `{"answer": "margins expanded", "confidence": 0.8,}`

	if _, err := SmartParse(input, &out); err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if out.Answer != "margins expanded" {
		t.Errorf("decoded %+v", out)
	}
}

func TestSmartParseHjsonUnquotedKeys(t *testing.T) {
	var out answerPayload
	input := `{
  answer: grounded in the 10-K
  confidence: 0.7
}`

	if _, err := SmartParse(input, &out); err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if out.Answer == "" {
		t.Errorf("decoded %+v", out)
	}
}

func TestSmartParseFailure(t *testing.T) {
	var out answerPayload
	if _, err := SmartParse("completely unstructured prose with no braces", &out); err == nil {
		t.Error("expected failure for non-object input")
	}
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"markdown fence", "```markdown\n# Title\n```", "# Title"},
		{"bare fence", "```\ncontent\n```", "content"},
		{"no fence", "  plain text  ", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.input); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateMarkdown(t *testing.T) {
	if !ValidateMarkdown("# Heading\n\nSome paragraph.") {
		t.Error("valid markdown rejected")
	}
	if !ValidateMarkdown("plain prose answer") {
		t.Error("plain prose rejected")
	}
	if ValidateMarkdown("") {
		t.Error("empty input accepted")
	}
	if ValidateMarkdown("   \n\n  ") {
		t.Error("whitespace-only input accepted")
	}
}
