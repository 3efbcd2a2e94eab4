package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/octobees/site-scraper/internal/bitable"
)

// fakeFeishu imitates the Bitable open API endpoints used by the service.
type fakeFeishu struct {
	mu        sync.Mutex
	fields    []string
	badSecret bool
	records   []map[string]any
}

func (f *fakeFeishu) created() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.records...)
}

func (f *fakeFeishu) client(t *testing.T) *bitable.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return bitable.NewClient(srv.Client(), srv.URL)
}

func (f *fakeFeishu) serve(w http.ResponseWriter, r *http.Request) {
	write := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/open-apis/auth/v3/tenant_access_token/internal":
		if f.badSecret {
			write(map[string]any{"code": 10014, "msg": "app secret invalid"})
			return
		}
		write(map[string]any{"code": 0, "msg": "ok", "tenant_access_token": "t-fake", "expire": 7200})
	case r.URL.Path == "/open-apis/wiki/v2/spaces/get_node":
		write(map[string]any{"code": 131005, "msg": "not found"})
	case strings.HasSuffix(r.URL.Path, "/fields"):
		items := make([]map[string]string, 0, len(f.fields))
		for _, name := range f.fields {
			items = append(items, map[string]string{"field_name": name})
		}
		write(map[string]any{"code": 0, "data": map[string]any{"items": items, "has_more": false}})
	case strings.HasSuffix(r.URL.Path, "/records") && r.Method == http.MethodPost:
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.records = append(f.records, body.Fields)
		f.mu.Unlock()
		write(map[string]any{"code": 0, "data": map[string]any{"record": map[string]any{"record_id": "recFake1"}}})
	case strings.HasPrefix(r.URL.Path, "/open-apis/bitable/v1/apps/"):
		write(map[string]any{"code": 0, "data": map[string]any{"app": map[string]any{"app_token": "bascnLeads", "name": "Leads"}}})
	default:
		http.NotFound(w, r)
	}
}
