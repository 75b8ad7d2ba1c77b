package llm

import (
	"context"
	"errors"
	"testing"

	"persona-llm/internal/domain"
)

func TestStructuredClient_GenerateJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{name: "plain json", body: `{"answer":"hola"}`, want: `{"answer":"hola"}`},
		{name: "fenced json", body: "```json\n{\"answer\":\"hola\"}\n```", want: `{"answer":"hola"}`},
		{name: "text around object", body: `Claro: {"answer":"hola"} espero que sirva`, wantErr: domain.ErrMalformedGenerationResult},
		{name: "object then trailing object", body: `{"answer":"hola"} {"answer":"chau"}`, wantErr: domain.ErrMalformedGenerationResult},
		{name: "empty body", body: "   ", wantErr: domain.ErrMalformedGenerationResult},
		{name: "not json", body: "lo siento, no puedo", wantErr: domain.ErrMalformedGenerationResult},
		{name: "truncated object", body: `{"answer":"hol`, wantErr: domain.ErrMalformedGenerationResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewStructuredClient(&MockClient{Response: tt.body}, nil)
			got, err := client.GenerateJSON(context.Background(), Request{Prompt: "x", SchemaName: "test"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStructuredClient_PassesTransportErrorThrough(t *testing.T) {
	apiErr := &APIError{StatusCode: 429, Message: "quota"}
	mock := &MockClient{Err: apiErr}
	client := NewStructuredClient(mock, nil)

	_, err := client.GenerateJSON(context.Background(), Request{Prompt: "x"})
	if err != apiErr {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(mock.Calls()))
	}
}

func TestStructuredClient_ForwardsRequest(t *testing.T) {
	mock := &MockClient{Response: `{}`}
	client := NewStructuredClient(mock, nil)
	schema := &Schema{Type: TypeObject}

	req := Request{SystemInstruction: "sys", Prompt: "p", Schema: schema, Temperature: Float32(0.25)}
	if _, err := client.GenerateJSON(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Schema != schema || calls[0].SystemInstruction != "sys" || *calls[0].Temperature != 0.25 {
		t.Fatalf("request not forwarded as-is: %+v", calls[0])
	}
}

func TestDecodeJSON_TypeMismatchIsMalformed(t *testing.T) {
	type reply struct {
		Confidence int `json:"confidence"`
	}
	if _, err := DecodeJSON[reply]([]byte(`{"confidence":"alta"}`)); !errors.Is(err, domain.ErrMalformedGenerationResult) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	got, err := DecodeJSON[reply]([]byte(`{"confidence":7}`))
	if err != nil || got.Confidence != 7 {
		t.Fatalf("unexpected decode result %+v, %v", got, err)
	}
}
