package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/site-scraper/internal/dto"
	"github.com/octobees/site-scraper/internal/extractor"
	"github.com/octobees/site-scraper/internal/fetcher"
	"github.com/octobees/site-scraper/internal/service"
)

const shopPage = `<!doctype html><html lang="en"><head>
<title>Harbour Coffee | Roasters in Dublin</title>
<meta name="description" content="Small batch coffee roasted on the Dublin quays.">
</head><body>
<header><a href="https://www.instagram.com/harbourcoffee/">Instagram</a></header>
<main><p>Visit us for a cup.</p></main>
<footer>
<a href="mailto:hello@harbourcoffee.ie">hello@harbourcoffee.ie</a>
<a href="mailto:orders@harbourcoffee.ie">Orders</a>
<a href="tel:+35312345678">Call</a>
<a href="https://facebook.com/harbourcoffee">Facebook</a>
<a href="https://facebook.com/privacy">Privacy</a>
</footer></body></html>`

func newTargetSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(shopPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newExtractHandler(t *testing.T, feishu *fakeFeishu, opts ...service.ExtractOption) *ExtractHandler {
	t.Helper()
	writer := service.NewBitableWriter(feishu.client(t), nil)
	svc := service.NewExtractService(
		fetcher.NewHTTPFetcher(nil, fetcher.Options{}),
		extractor.New(),
		writer,
		append([]service.ExtractOption{service.WithPrivateTargets()}, opts...)...,
	)
	return NewExtractHandler(svc)
}

func decodeExtract(t *testing.T, rec *httptest.ResponseRecorder) dto.ExtractResponse {
	t.Helper()
	var resp dto.ExtractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestExtractHandler_WritesToBitable(t *testing.T) {
	site := newTargetSite(t)
	feishu := &fakeFeishu{fields: []string{"网站URL", "公司名称", "邮箱", "电话", "Facebook"}}
	h := newExtractHandler(t, feishu)

	body := `{"url":"` + site.URL + `/","feishuConfig":{"appId":"cli_app","appSecret":"secret","tableId":"tblLeads00001"}}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Extract(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeExtract(t, rec)
	if !resp.OK || !resp.FeishuSuccess || resp.FeishuStatus != service.WriteSuccess || resp.RecordID != "recFake1" {
		t.Fatalf("unexpected write outcome: %+v", resp)
	}
	if resp.Results.CompanyName != "Harbour Coffee" {
		t.Fatalf("unexpected company %q", resp.Results.CompanyName)
	}
	if resp.Results.Email != "hello@harbourcoffee.ie" {
		t.Fatalf("expected first mailto address, got %q", resp.Results.Email)
	}
	if len(resp.Results.Facebook) != 1 || resp.Results.Facebook[0] != "https://www.facebook.com/harbourcoffee/" {
		t.Fatalf("unexpected facebook links %v", resp.Results.Facebook)
	}
	if resp.ConfigStatus.Source != service.SourceRequest || !resp.ConfigStatus.HasTableID || resp.ConfigStatus.HasUserConfig {
		t.Fatalf("unexpected config status %+v", resp.ConfigStatus)
	}

	records := feishu.created()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0]["公司名称"] != "Harbour Coffee" || records[0]["网站URL"] != site.URL+"/" {
		t.Fatalf("unexpected record fields %v", records[0])
	}
	if _, ok := records[0]["来自 gpt 的输出"]; !ok {
		t.Fatalf("expected raw column in %v", records[0])
	}
}

func TestExtractHandler_SkipsWithoutConfig(t *testing.T) {
	site := newTargetSite(t)
	feishu := &fakeFeishu{}
	h := newExtractHandler(t, feishu)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/extract?u="+site.URL+"/", nil)
	rec := httptest.NewRecorder()

	if err := h.Extract(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeExtract(t, rec)
	if resp.FeishuSuccess || resp.FeishuStatus != service.WriteSkipped || resp.FeishuError != service.CodeMissingConfig {
		t.Fatalf("expected skipped write, got %+v", resp)
	}
	if resp.ConfigStatus.Source != service.SourceNone {
		t.Fatalf("unexpected source %q", resp.ConfigStatus.Source)
	}
	if resp.Results.Instagram == nil || resp.Results.Instagram[0] != "https://www.instagram.com/harbourcoffee/" {
		t.Fatalf("unexpected instagram %v", resp.Results.Instagram)
	}
	if len(feishu.created()) != 0 {
		t.Fatalf("no record should be written")
	}
}

func TestExtractHandler_Failures(t *testing.T) {
	site := newTargetSite(t)

	tests := map[string]struct {
		method string
		target string
		body   string
		status int
		code   string
	}{
		"missing url": {
			method: http.MethodPost, target: "/extract", body: `{}`,
			status: http.StatusBadRequest, code: "missing_url",
		},
		"invalid url": {
			method: http.MethodPost, target: "/extract", body: `{"url":"ftp://acme.ie/file"}`,
			status: http.StatusBadRequest, code: "invalid_url",
		},
		"invalid body": {
			method: http.MethodPost, target: "/extract", body: `{"url":`,
			status: http.StatusBadRequest, code: "invalid_body",
		},
		"fetch failure": {
			method: http.MethodGet, target: "/extract?url=" + site.URL + "/missing",
			status: http.StatusBadGateway, code: "fetch_failed",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := newExtractHandler(t, &fakeFeishu{})
			e := echo.New()
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.target, bytes.NewBufferString(tc.body))
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			rec := httptest.NewRecorder()

			if err := h.Extract(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if payload := decodeEnvelope(t, rec); payload.OK || payload.Error != tc.code {
				t.Fatalf("unexpected payload %+v", payload)
			}
		})
	}
}

func TestExtractHandler_RefusesPrivateTargets(t *testing.T) {
	site := newTargetSite(t)
	svc := service.NewExtractService(fetcher.NewHTTPFetcher(nil, fetcher.Options{}), extractor.New(), nil)
	h := NewExtractHandler(svc)

	for _, target := range []string{site.URL + "/", "http://localhost:8080/", "http://169.254.169.254/latest/meta-data"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/extract?url="+url.QueryEscape(target), nil)
		rec := httptest.NewRecorder()

		if err := h.Extract(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest || decodeEnvelope(t, rec).Error != "invalid_url" {
			t.Fatalf("expected invalid_url for %s, got %d %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestExtractHandler_FetchFailureHidesPageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stack trace: secret-db-password", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	h := newExtractHandler(t, &fakeFeishu{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/extract?url="+url.QueryEscape(srv.URL+"/"), nil)
	rec := httptest.NewRecorder()
	if err := h.Extract(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadGateway || strings.Contains(rec.Body.String(), "secret-db-password") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
