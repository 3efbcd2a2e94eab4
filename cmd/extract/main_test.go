package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octobees/site-scraper/internal/config"
)

func TestRunPrintsRecord(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Fjord Outdoor - Hjem</title></head>
<body><footer><a href="mailto:salg@fjordoutdoor.no">salg@fjordoutdoor.no</a></footer></body></html>`))
	}))
	defer site.Close()

	cfg := &config.Config{Fetch: config.FetchConfig{Timeout: 5 * time.Second}}
	stdout := &bytes.Buffer{}
	err := run(context.Background(), cfg, options{quiet: true}, site.URL, stdout, io.Discard, log.New(io.Discard))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got output
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, stdout.String())
	}
	if got.Results.CompanyName != "Fjord Outdoor" || got.Results.Email != "salg@fjordoutdoor.no" {
		t.Fatalf("unexpected record %+v", got.Results)
	}
	if got.Write != nil || got.Mode != "http" {
		t.Fatalf("unexpected output %+v", got)
	}
}

func TestRunReportsFetchFailure(t *testing.T) {
	site := httptest.NewServer(http.NotFoundHandler())
	defer site.Close()

	cfg := &config.Config{Fetch: config.FetchConfig{Timeout: 5 * time.Second}}
	if err := run(context.Background(), cfg, options{quiet: true}, site.URL, io.Discard, io.Discard, log.New(io.Discard)); err == nil {
		t.Fatalf("expected error for missing page")
	}
}

func TestRootCmdRequiresURL(t *testing.T) {
	cmd := newRootCmd(io.Discard, io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected argument error")
	}
}
