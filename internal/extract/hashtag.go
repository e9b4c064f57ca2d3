// internal/extract/hashtag.go

package extract

import "regexp"

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{M}\p{N}_]+`)

// ExtractHashtags returns every hashtag in text in scan order, repeats included.
// The result is never nil.
func ExtractHashtags(text string) []string {
	if text == "" {
		return []string{}
	}
	tags := hashtagPattern.FindAllString(text, -1)
	if tags == nil {
		return []string{}
	}
	return tags
}
