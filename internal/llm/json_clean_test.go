package llm

import "testing"

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "  \n", want: ""},
		{name: "no fences", raw: ` {"a":1} `, want: `{"a":1}`},
		{name: "json fence", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "upper case fence", raw: "```JSON {\"a\":1} ```", want: `{"a":1}`},
		{name: "bom", raw: "\uFEFF{\"a\":1}", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONResponse(tt.raw); got != tt.want {
				t.Fatalf("CleanJSONResponse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
