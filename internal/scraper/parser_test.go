// internal/scraper/parser_test.go
package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
)

const postPageHTML = `<html><body>
<strong data-e2e="like-count"></strong>
<strong data-e2e="browse-like-count"> 1.2K </strong>
<strong data-e2e="comment-count">34</strong>
<div data-e2e="video-desc">Summer #beach</div>
<span class="video-time">3d ago</span>
</body></html>`

func TestDOMObserver_ObservePost(t *testing.T) {
	o := NewDOMObserver(config.DefaultSelectors())

	obs, err := o.ObservePost(postPageHTML)
	require.NoError(t, err)

	assert.Equal(t, "1.2K", obs[extract.FieldLikes], "empty first match falls through to the next selector")
	assert.Equal(t, "34", obs[extract.FieldComments])
	assert.Equal(t, "Summer #beach", obs[extract.FieldDescription])
	assert.Equal(t, "3d ago", obs[extract.FieldTimestamp])

	_, err = obs.Get(extract.FieldShares)
	assert.ErrorIs(t, err, extract.ErrNotObserved)
}

func TestDOMObserver_ObserveProfile(t *testing.T) {
	o := NewDOMObserver(config.DefaultSelectors())

	obs, err := o.ObserveProfile(`<html><body>
<h2 data-e2e="user-bio">hello</h2>
<strong data-e2e="followers-count">10.5M</strong>
<strong data-e2e="likes-count">200</strong>
</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "hello", obs[extract.FieldBio])
	assert.Equal(t, "10.5M", obs[extract.FieldFollowers])
	assert.Equal(t, "200", obs[extract.FieldLikes])
	assert.NotContains(t, obs, extract.FieldFollowing)
}

func TestDOMObserver_CustomSelectors(t *testing.T) {
	sel := config.SelectorConfig{Post: config.PostSelectors{Views: []string{"", "#views"}}}
	o := NewDOMObserver(sel)

	obs, err := o.ObservePost(`<p id="views">9</p>`)
	require.NoError(t, err)
	assert.Equal(t, extract.Observation{extract.FieldViews: "9"}, obs)
}

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
<a href="/@u/video/7234567890123456789">one</a>
<a>no href</a>
<a href="https://www.tiktok.com/@u/photo/7234567890123456790?lang=en">two</a>
<a href="/about">skip</a>
</body></html>`

	links, err := ExtractLinks(html, config.DefaultSelectors().PostLink)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/@u/video/7234567890123456789",
		"https://www.tiktok.com/@u/photo/7234567890123456790?lang=en",
	}, links)

	_, err = ExtractLinks(html, "")
	assert.Error(t, err)
}
