package llm

import "testing"

func TestDecodeLLMJSON(t *testing.T) {
	type payload struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	cases := map[string]string{
		"plain":      `{"category":"returns","confidence":0.9}`,
		"fenced":     "```json\n{\"category\":\"returns\",\"confidence\":0.9}\n```",
		"bare fence": "```\n{\"category\":\"returns\",\"confidence\":0.9}\n```",
		"chatter":    "Sure! Here you go: {\"category\":\"returns\",\"confidence\":0.9} Hope that helps.",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var got payload
			if err := DecodeLLMJSON(input, &got); err != nil {
				t.Fatalf("DecodeLLMJSON: %v", err)
			}
			if got.Category != "returns" || got.Confidence != 0.9 {
				t.Fatalf("unexpected payload %#v", got)
			}
		})
	}
}

func TestDecodeLLMJSONRejectsGarbage(t *testing.T) {
	var target map[string]any
	for _, input := range []string{"", "   ", "the category is returns", "{not json}"} {
		if err := DecodeLLMJSON(input, &target); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
