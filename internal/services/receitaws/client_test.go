package receitaws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cnpjscan/internal/services"
)

const successBody = `{
  "status": "OK",
  "nome": "ACME DISTRIBUIDORA LTDA",
  "fantasia": "ACME",
  "porte": "DEMAIS",
  "situacao": "ATIVA",
  "atividade_principal": [{"code": "47.42-3/00", "text": "Comércio varejista de material elétrico"}],
  "atividades_secundarias": [
    {"code": "46.49-4/06", "text": "Comércio atacadista de lustres"},
    {"code": "62.01-5/01"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL + "/v1", Token: token, Days: 3, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestLookupSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/cnpj/04134893000158/days/3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(successBody))
	}, "secret")

	result, err := client.Lookup(context.Background(), "04134893000158")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	success, ok := result.(Success)
	if !ok {
		t.Fatalf("expected Success, got %T", result)
	}
	company := success.Company
	if company.Name == nil || *company.Name != "ACME DISTRIBUIDORA LTDA" {
		t.Fatalf("unexpected name %v", company.Name)
	}
	if len(company.Primary) != 1 || company.Primary[0].Code != "47.42-3/00" {
		t.Fatalf("unexpected primary activities %+v", company.Primary)
	}
	if len(company.Secondary) != 2 {
		t.Fatalf("expected 2 secondary activities, got %d", len(company.Secondary))
	}
	if company.Secondary[1].Text != nil {
		t.Fatalf("absent text should stay nil, got %q", *company.Secondary[1].Text)
	}
}

func TestLookupAuthorizationWithScheme(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token abc" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(successBody))
	}, "Token abc")

	if _, err := client.Lookup(context.Background(), "04134893000158"); err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
}

func TestLookupAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR","message":"CNPJ inválido"}`))
	}, "secret")

	result, err := client.Lookup(context.Background(), "00000000000000")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	apiErr, ok := result.(APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", result)
	}
	if apiErr.Message != "CNPJ inválido" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestLookupMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `<html>busy</html>`,
		"no primary":        `{"status":"OK","nome":"X","atividade_principal":[]}`,
		"code missing":      `{"status":"OK","atividade_principal":[{"text":"Sem código"}]}`,
		"secondary no code": `{"status":"OK","atividade_principal":[{"code":"1"}],"atividades_secundarias":[{"text":"x"}]}`,
		"array body":        `[1,2,3]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, "secret")
			result, err := client.Lookup(context.Background(), "04134893000158")
			if err != nil {
				t.Fatalf("Lookup returned error: %v", err)
			}
			malformed, ok := result.(Malformed)
			if !ok {
				t.Fatalf("expected Malformed, got %T", result)
			}
			if malformed.Raw != body {
				t.Fatalf("raw body not preserved: %q", malformed.Raw)
			}
		})
	}
}

func TestLookupNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("Too many requests"))
	}, "secret")

	result, err := client.Lookup(context.Background(), "04134893000158")
	if err == nil {
		t.Fatalf("expected error, got result %T", result)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestLookupTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Token: "secret", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Lookup(context.Background(), "04134893000158")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestAuthorizationValue(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"abc":         "Bearer abc",
		" abc ":       "Bearer abc",
		"Bearer abc":  "Bearer abc",
		"Token x y z": "Token x y z",
	}
	for input, want := range tests {
		if got := authorizationValue(input); got != want {
			t.Errorf("authorizationValue(%q) = %q, want %q", input, got, want)
		}
	}
}
