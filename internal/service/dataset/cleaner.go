package dataset

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	wikiLinkRegex     = regexp.MustCompile(`\[\[.*?\]\]`)
	wikiTemplateRegex = regexp.MustCompile(`\{\{.*?\}\}`)
	punctRunRegex     = regexp.MustCompile(`!{4,}|\?{4,}|\.{4,}`)
)

// CleanContent normalises a scraped comment: HTML tags and entities are
// resolved, wiki markup is removed, runs of four or more identical
// punctuation marks shrink to three, and whitespace collapses to single spaces.
func CleanContent(raw string) string {
	text := raw
	if strings.ContainsAny(text, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}

	text = wikiLinkRegex.ReplaceAllString(text, "")
	text = wikiTemplateRegex.ReplaceAllString(text, "")
	text = punctRunRegex.ReplaceAllStringFunc(text, func(run string) string {
		return run[:3]
	})
	return strings.Join(strings.Fields(text), " ")
}
