// internal/scraper/parser.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
)

// DOMObserver reads rendered text for profile and post fields using
// configured CSS selectors. It implements extract.Observer.
type DOMObserver struct {
	profile map[extract.Field][]string
	post    map[extract.Field][]string
}

// NewDOMObserver builds an observer from the selector section of the config.
func NewDOMObserver(sel config.SelectorConfig) *DOMObserver {
	return &DOMObserver{
		profile: map[extract.Field][]string{
			extract.FieldBio:       sel.Profile.Bio,
			extract.FieldFollowers: sel.Profile.Followers,
			extract.FieldFollowing: sel.Profile.Following,
			extract.FieldLikes:     sel.Profile.Likes,
		},
		post: map[extract.Field][]string{
			extract.FieldLikes:       sel.Post.Likes,
			extract.FieldComments:    sel.Post.Comments,
			extract.FieldShares:      sel.Post.Shares,
			extract.FieldViews:       sel.Post.Views,
			extract.FieldDescription: sel.Post.Description,
			extract.FieldTimestamp:   sel.Post.Time,
		},
	}
}

// ObserveProfile returns the profile fields visible in html.
func (o *DOMObserver) ObserveProfile(html string) (extract.Observation, error) {
	return observe(html, o.profile)
}

// ObservePost returns the post fields visible in html.
func (o *DOMObserver) ObservePost(html string) (extract.Observation, error) {
	return observe(html, o.post)
}

func observe(html string, selectors map[extract.Field][]string) (extract.Observation, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	obs := make(extract.Observation, len(selectors))
	for field, list := range selectors {
		if text, ok := firstText(doc, list); ok {
			obs[field] = text
		}
	}
	return obs, nil
}

// firstText returns the trimmed text of the first selector whose first match
// is non-empty.
func firstText(doc *goquery.Document, selectors []string) (string, bool) {
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// ExtractLinks returns the href of every element matching selector, in
// document order. Elements without an href are skipped.
func ExtractLinks(html, selector string) ([]string, error) {
	if selector == "" {
		return nil, fmt.Errorf("link selector cannot be empty")
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links, nil
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
