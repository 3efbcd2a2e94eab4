package extractor

import "github.com/PuerkitoBio/goquery"

var descriptionStrategies = []strategy{
	metaStrategy("description"),
	metaStrategy("og:description"),
	metaStrategy("twitter:description"),
	firstParagraph,
}

// firstParagraph returns the first <p> whose length falls inside the window
// for the page variant.
func firstParagraph(p *page) string {
	bounds := paragraphBounds[p.variant]
	var found string
	p.doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if n := runeLen(text); n > bounds[0] && n < bounds[1] {
			found = text
			return false
		}
		return true
	})
	return found
}
