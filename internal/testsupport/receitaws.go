package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ReceitaWSServer fakes the CNPJ endpoint. Unknown tax ids get a registration
// whose primary activity is PrimaryCode; Responses overrides the body per tax
// id.
type ReceitaWSServer struct {
	URL         string
	PrimaryCode string
	Responses   map[string]string

	mu    sync.Mutex
	calls []string
}

// NewReceitaWSServer starts a fake lookup API closed at test cleanup.
func NewReceitaWSServer(t testing.TB) *ReceitaWSServer {
	t.Helper()

	fake := &ReceitaWSServer{PrimaryCode: "47.42-3/00", Responses: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(server.Close)
	fake.URL = server.URL
	return fake
}

// Calls returns the tax ids looked up so far, in order.
func (s *ReceitaWSServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *ReceitaWSServer) serve(w http.ResponseWriter, r *http.Request) {
	// /cnpj/{tax_id}/days/{days}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 || parts[len(parts)-4] != "cnpj" {
		http.NotFound(w, r)
		return
	}
	taxID := parts[len(parts)-3]

	s.mu.Lock()
	s.calls = append(s.calls, taxID)
	body, ok := s.Responses[taxID]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if ok {
		_, _ = w.Write([]byte(body))
		return
	}
	_, _ = fmt.Fprintf(w, `{"status":"OK","nome":"Empresa %s","fantasia":"","porte":"DEMAIS","situacao":"ATIVA",`+
		`"atividade_principal":[{"code":%q,"text":"Comércio varejista"}],`+
		`"atividades_secundarias":[{"code":"62.01-5/01","text":"Desenvolvimento de software"}]}`, taxID, s.PrimaryCode)
}
