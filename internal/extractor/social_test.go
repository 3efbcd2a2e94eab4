package extractor

import "testing"

func TestCleanSocialLink(t *testing.T) {
	tests := map[string]struct {
		raw  string
		pl   platform
		want string
	}{
		"instagram bare":             {raw: "https://instagram.com/acme", pl: instagram, want: "https://www.instagram.com/acme/"},
		"instagram without scheme":   {raw: "instagram.com/acme?hl=en", pl: instagram, want: "https://www.instagram.com/acme/"},
		"instagram short host":       {raw: "http://instagr.am/acme", pl: instagram, want: "https://www.instagram.com/acme/"},
		"instagram quoted":           {raw: `"https://www.instagram.com/acme/",`, pl: instagram, want: "https://www.instagram.com/acme/"},
		"instagram post":             {raw: "https://www.instagram.com/p/Cx123/", pl: instagram, want: ""},
		"instagram reel":             {raw: "https://www.instagram.com/reel/Cx123/", pl: instagram, want: ""},
		"instagram single char":      {raw: "https://instagram.com/a", pl: instagram, want: ""},
		"instagram mixed case":       {raw: "https://instagram.com/AcmeWidgets", pl: instagram, want: "https://www.instagram.com/acmewidgets/"},
		"instagram root":             {raw: "https://instagram.com/", pl: instagram, want: ""},
		"instagram encoded quote":    {raw: "https://instagram.com/acme%22", pl: instagram, want: ""},
		"other host":                 {raw: "https://example.com/acme", pl: instagram, want: ""},
		"relative link":              {raw: "/instagram", pl: instagram, want: ""},
		"facebook page":              {raw: "https://m.facebook.com/acme?ref=bookmarks", pl: facebook, want: "https://www.facebook.com/acme/"},
		"facebook protocol relative": {raw: "//facebook.com/acme,", pl: facebook, want: "https://www.facebook.com/acme/"},
		"facebook about":             {raw: "https://www.facebook.com/acme/about", pl: facebook, want: ""},
		"facebook help":              {raw: "https://facebook.com/help", pl: facebook, want: ""},
		"facebook policy":            {raw: "https://www.facebook.com/policy.php", pl: facebook, want: ""},
		"facebook sharer":            {raw: "https://www.facebook.com/sharer/sharer.php?u=x", pl: facebook, want: ""},
		"facebook profile id":        {raw: "https://www.facebook.com/profile.php?id=123", pl: facebook, want: "https://www.facebook.com/profile.php?id=123"},
		"facebook pages path":        {raw: "https://www.facebook.com/pages/Acme/123456/", pl: facebook, want: "https://www.facebook.com/pages/Acme/123456/"},
		"fb short link":              {raw: "https://fb.me/acme", pl: facebook, want: "https://fb.me/acme"},
		"instagram on facebook":      {raw: "https://instagram.com/acme", pl: facebook, want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := cleanSocialLink(tt.raw, tt.pl); got != tt.want {
				t.Fatalf("cleanSocialLink(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSocialPriorityContainers(t *testing.T) {
	html := `<body>
		<main><a href="https://www.facebook.com/partner">Partner</a></main>
		<footer><a href="https://www.facebook.com/acme">Facebook</a></footer>
	</body>`

	rec, _ := New().ExtractString(html, "https://acme.io")
	if len(rec.Facebook) != 1 || rec.Facebook[0] != "https://www.facebook.com/acme/" {
		t.Fatalf("expected only the footer link, got %#v", rec.Facebook)
	}
}

func TestSocialWholeDocumentFallback(t *testing.T) {
	html := `<body><main>
		<a href="https://www.instagram.com/acme">IG</a>
		<a href="https://www.instagram.com/acme.studio/">IG studio</a>
		<a href="https://www.instagram.com/acme/">IG again</a>
	</main></body>`

	rec, _ := New().ExtractString(html, "https://acme.io")
	want := []string{"https://www.instagram.com/acme/", "https://www.instagram.com/acme.studio/"}
	if len(rec.Instagram) != len(want) {
		t.Fatalf("unexpected instagram links: %#v", rec.Instagram)
	}
	for i := range want {
		if rec.Instagram[i] != want[i] {
			t.Fatalf("expected discovery order %v, got %v", want, rec.Instagram)
		}
	}
}

func TestSocialInstagramCaseVariantsDedupe(t *testing.T) {
	html := `<html><body><footer>
<a href="https://instagram.com/Acme">IG</a>
<a href="https://www.instagram.com/acme/">Instagram</a>
</footer></body></html>`
	rec, _ := New().ExtractString(html, "https://acme.io")
	if len(rec.Instagram) != 1 || rec.Instagram[0] != "https://www.instagram.com/acme/" {
		t.Fatalf("expected one lowercased profile, got %#v", rec.Instagram)
	}
}
