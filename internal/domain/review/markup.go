package review

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"review-summarizer/internal/utils/text"
)

// StripMarkup returns the visible text of an HTML fragment with whitespace
// collapsed. Scraped marketplace reviews often carry <br> and inline tags.
// Input that cannot be parsed is only whitespace-collapsed.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return text.CollapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return text.CollapseWhitespace(s)
	}

	// <br> は改行として扱う（隣接する単語が連結されないように）
	doc.Find("br").ReplaceWithHtml(" ")

	return text.CollapseWhitespace(doc.Text())
}
