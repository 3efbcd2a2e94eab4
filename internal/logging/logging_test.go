package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		level     string
		wantDebug bool
	}{
		"debug":   {level: "debug", wantDebug: true},
		"info":    {level: "info"},
		"unknown": {level: "chatty"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, tc.level)
			logger.Debug("warmup", "k", "v")
			logger.Info("extraction complete", "url", "https://acme.ie")

			out := buf.String()
			if got := strings.Contains(out, "msg=warmup"); got != tc.wantDebug {
				t.Fatalf("debug line present = %v, want %v: %s", got, tc.wantDebug, out)
			}
			if !strings.Contains(out, "level=info") || !strings.Contains(out, "url=https://acme.ie") {
				t.Fatalf("expected logfmt info line, got %s", out)
			}
		})
	}
}
