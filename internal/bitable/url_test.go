package bitable

import "testing"

func TestParseURL(t *testing.T) {
	tests := map[string]struct {
		raw    string
		want   Target
		wantOK bool
	}{
		"base link": {
			raw:    "https://acme.feishu.cn/base/bascnAbc123?table=tblXYZ1234567&view=vewQ",
			want:   Target{AppToken: "bascnAbc123", TableID: "tblXYZ1234567"},
			wantOK: true,
		},
		"wiki link": {
			raw:    "https://acme.feishu.cn/wiki/wikcnNode9?table=tblXYZ1234567",
			want:   Target{AppToken: "wikcnNode9", TableID: "tblXYZ1234567"},
			wantOK: true,
		},
		"table in path": {
			raw:    "https://acme.feishu.cn/base/bascnAbc123/tblPath123456",
			want:   Target{AppToken: "bascnAbc123", TableID: "tblPath123456"},
			wantOK: true,
		},
		"not a link": {raw: "bascnAbc123"},
		"unrelated":  {raw: "https://example.com/about"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseURL(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("ParseURL(%q) = %+v, %v; want %+v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidTableID(t *testing.T) {
	if !ValidTableID("tblXYZ1234567") {
		t.Fatalf("expected valid table id")
	}
	for _, id := range []string{"", "tbl123", "abcXYZ1234567"} {
		if ValidTableID(id) {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}
