package extractor

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// platform describes how links for one social network are recognised and
// canonicalised.
type platform struct {
	domains   []string
	accept    func(u *url.URL, segments []string) bool
	normalize func(u *url.URL, segments []string) string
}

const (
	instagramBase = "https://www.instagram.com/"
	facebookBase  = "https://www.facebook.com/"
)

var instagram = platform{
	domains:   []string{"instagram.com", "instagr.am", "ig.tv"},
	accept:    acceptInstagram,
	normalize: normalizeInstagram,
}

var facebook = platform{
	domains:   []string{"facebook.com", "fb.com", "fb.me"},
	accept:    acceptFacebook,
	normalize: normalizeFacebook,
}

// socialContainers are scanned before the rest of the document.
var socialContainers = []string{
	"header",
	"nav",
	"footer",
	".header",
	"#header",
	".footer",
	"#footer",
	`[role="banner"]`,
	`[role="contentinfo"]`,
	`[class*="social"]`,
	`[id*="social"]`,
	".follow-us",
}

// extractSocial collects profile links for pl. Priority containers and
// structured data are consulted first; the whole document only when they
// produced nothing for this platform.
func extractSocial(p *page, pl platform) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(raw string) {
		v := cleanSocialLink(raw, pl)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, sel := range socialContainers {
		for _, href := range hrefs(p.doc.Find(sel)) {
			add(href)
		}
	}
	for _, link := range p.ld.sameAs {
		add(link)
	}
	if len(out) == 0 {
		for _, href := range hrefs(p.doc.Selection) {
			add(href)
		}
	}
	return out
}

// cleanSocialLink validates a candidate and returns its canonical form, or ""
// when it is not a profile link on pl.
func cleanSocialLink(raw string, pl platform) string {
	if strings.Contains(raw, "%22") {
		return ""
	}
	s := strings.Trim(raw, `"', `)
	if s == "" || strings.ContainsAny(s, `"' `) {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.HasPrefix(s, "/"):
		return ""
	case !strings.Contains(s, "://"):
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	if !hostMatches(strings.ToLower(u.Hostname()), pl.domains) {
		return ""
	}

	segments := pathSegments(u.Path)
	if len(segments) == 0 || !pl.accept(u, segments) {
		return ""
	}
	return pl.normalize(u, segments)
}

func hostMatches(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func pathSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

var instagramReserved = map[string]bool{
	"p":        true,
	"reel":     true,
	"reels":    true,
	"tv":       true,
	"stories":  true,
	"explore":  true,
	"accounts": true,
}

func acceptInstagram(_ *url.URL, segments []string) bool {
	first := strings.ToLower(segments[0])
	if instagramReserved[first] {
		return false
	}
	n := utf8.RuneCountInString(first)
	return n > 1 && n <= 50
}

// Instagram usernames are case-insensitive, so casing variants collapse.
func normalizeInstagram(u *url.URL, segments []string) string {
	name := strings.ToLower(segments[0])
	if strings.HasSuffix(strings.ToLower(u.Hostname()), "ig.tv") {
		return "https://ig.tv/" + name + "/"
	}
	return instagramBase + name + "/"
}

var facebookExcluded = []string{
	"policy.php", "help", "terms", "privacy", "about", "developers", "careers",
	"cookies", "settings", "login", "signup", "sharer", "share.php", "dialog", "plugins", "l.php",
}

func acceptFacebook(u *url.URL, segments []string) bool {
	target := strings.ToLower(u.EscapedPath() + "?" + u.RawQuery)
	for _, ex := range facebookExcluded {
		if strings.Contains(target, ex) {
			return false
		}
	}
	return utf8.RuneCountInString(segments[0]) > 1
}

// facebookNested are path prefixes whose profile identity spans several segments.
var facebookNested = map[string]int{
	"pages":  3,
	"groups": 2,
	"people": 3,
}

func normalizeFacebook(u *url.URL, segments []string) string {
	host := strings.ToLower(u.Hostname())
	if host == "fb.me" || strings.HasSuffix(host, ".fb.me") {
		return "https://fb.me/" + strings.Join(segments, "/")
	}
	first := segments[0]
	if strings.EqualFold(first, "profile.php") {
		if id := u.Query().Get("id"); id != "" {
			return facebookBase + "profile.php?id=" + url.QueryEscape(id)
		}
		return ""
	}
	if n, ok := facebookNested[strings.ToLower(first)]; ok {
		if len(segments) < n {
			return ""
		}
		return facebookBase + strings.Join(segments[:n], "/") + "/"
	}
	return facebookBase + first + "/"
}
