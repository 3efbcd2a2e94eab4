package bitable

import (
	"net/url"
	"strings"
)

// Target is what can be read from a Bitable or wiki share link.
type Target struct {
	AppToken string
	TableID  string
}

// ParseURL reads the app (or wiki node) token and table id from a link such as
// https://x.feishu.cn/base/<app>?table=tbl... or .../wiki/<node>?table=tbl....
func ParseURL(raw string) (Target, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return Target{}, false
	}

	var t Target
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		switch {
		case (seg == "base" || seg == "wiki") && i+1 < len(segments) && t.AppToken == "":
			t.AppToken = segments[i+1]
		case strings.HasPrefix(seg, "tbl") && t.TableID == "":
			t.TableID = seg
		}
	}
	if table := u.Query().Get("table"); table != "" {
		t.TableID = table
	}
	if t.AppToken == "" && t.TableID == "" {
		return Target{}, false
	}
	return t, true
}

// ValidTableID reports whether id looks like a Bitable table id.
func ValidTableID(id string) bool {
	return strings.HasPrefix(id, "tbl") && len(id) >= 10
}
