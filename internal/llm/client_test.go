package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_SendsSchemaAndReturnsContent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"answer\":\"hola\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "secret", "gpt-test", nil)
	out, err := client.Generate(context.Background(), Request{
		SystemInstruction: "eres una persona",
		Prompt:            "hola",
		Schema: &Schema{
			Type:       TypeObject,
			Properties: map[string]*Schema{"answer": {Type: TypeString}},
			Required:   []string{"answer"},
		},
		SchemaName:  "chat_reply",
		Temperature: Float32(0.9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"answer":"hola"}` {
		t.Fatalf("unexpected content %q", out)
	}

	if got["model"] != "gpt-test" {
		t.Fatalf("expected default model, got %v", got["model"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %v", got["messages"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("expected json_schema response_format, got %v", got["response_format"])
	}
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != "chat_reply" {
		t.Fatalf("expected schema name chat_reply, got %v", js["name"])
	}
}

func TestHTTPClient_TooManyRequestsIsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "k", "m", nil)
	_, err := client.Generate(context.Background(), Request{Prompt: "hola"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "Rate limit reached" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit classification")
	}
}

func TestHTTPClient_UnauthorizedIsNotRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "bad", "m", nil)
	_, err := client.Generate(context.Background(), Request{Prompt: "hola"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if IsRateLimit(err) {
		t.Fatalf("401 must not be treated as rate limit")
	}
}

func TestHTTPClient_NoChoicesReturnsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	out, err := NewHTTPClient(srv.URL, "k", "m", nil).Generate(context.Background(), Request{Prompt: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty body, got %q", out)
	}
}
