// internal/scraper/engine_test.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

const (
	firstPost  = "7234567890123456789"
	secondPost = "7234567890123456790"
	thirdPost  = "7234567890123456791"
)

func link(id string) string {
	return fmt.Sprintf(`<a href="/@creator/video/%s">post</a>`, id)
}

var profileHTML = `<html><head>
<script id="SIGI_STATE" type="application/json">{"UserModule":{
"users":{"creator":{"uniqueId":"creator","signature":"Bio here","verified":true}},
"stats":{"creator":{"followerCount":1500,"followingCount":20,"heartCount":98000}}}}</script>
</head><body>` + link(firstPost) + `</body></html>`

var firstPostHTML = `<html><head>
<script id="SIGI_STATE" type="application/json">{"ItemModule":{"` + firstPost + `":{"id":"` + firstPost + `",
"desc":"Summer #beach #sun","createTime":"1690000000",
"stats":{"diggCount":1200,"commentCount":34,"shareCount":5,"playCount":45000}}}}</script>
</head><body></body></html>`

const domPostHTML = `<html><body>
<strong data-e2e="like-count">2.5K</strong>
<div data-e2e="video-desc">From the page #dom</div>
<span data-e2e="video-time">2h ago</span>
</body></html>`

// fakeSession serves scripted pages and records what was asked of it.
type fakeSession struct {
	profile    string
	profileErr error
	batches    [][]string
	batchErr   error
	posts      map[string]string
	postErrs   map[string]error

	scrolls int
	loaded  []string
	closed  bool
}

func (s *fakeSession) LoadProfilePage(context.Context, string) (string, error) {
	return s.profile, s.profileErr
}

func (s *fakeSession) NextLinkBatch(context.Context) ([]string, error) {
	s.scrolls++
	if s.scrolls > len(s.batches) {
		return nil, s.batchErr
	}
	return s.batches[s.scrolls-1], nil
}

func (s *fakeSession) LoadPostPage(_ context.Context, _ string, postID string) (string, error) {
	s.loaded = append(s.loaded, postID)
	if err := s.postErrs[postID]; err != nil {
		return "", err
	}
	return s.posts[postID], nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func newTestScraper(session Session, maxScrolls int, hook RunHook) *Scraper {
	cfg := config.Default()
	engine := extract.NewEngine(&extract.Config{
		Observer: NewDOMObserver(cfg.Selectors),
		Now:      func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
	return New(Options{
		Sessions:   func(context.Context) (Session, error) { return session, nil },
		Engine:     engine,
		MaxScrolls: maxScrolls,
		OnRun:      hook,
	})
}

func TestScrapeProfile_FullRun(t *testing.T) {
	session := &fakeSession{
		profile: profileHTML,
		batches: [][]string{
			{"/@creator/video/" + firstPost, "/@creator/video/" + secondPost},
			{"/@creator/video/" + thirdPost},
		},
		posts: map[string]string{
			firstPost:  firstPostHTML,
			secondPost: domPostHTML,
		},
		postErrs: map[string]error{thirdPost: errors.New("timeout")},
	}
	var stats RunStats
	s := newTestScraper(session, 5, func(_ *extract.AggregateResult, st RunStats) { stats = st })

	result := s.ScrapeProfile(context.Background(), "creator", 3)
	require.NotNil(t, result)
	require.False(t, result.Failed())

	require.NotNil(t, result.Profile)
	assert.Equal(t, "Bio here", *result.Profile.Bio)
	assert.Equal(t, int64(1500), *result.Profile.Followers)
	assert.Equal(t, int64(98000), *result.Profile.Likes)
	assert.True(t, *result.Profile.Verified)

	require.Len(t, result.Posts, 3)
	first := result.Posts[0]
	assert.Equal(t, firstPost, first.PostID)
	assert.Equal(t, int64(1200), *first.Likes)
	assert.Equal(t, []string{"#beach", "#sun"}, first.Hashtags)
	assert.Equal(t, int64(1690000000), *first.Timestamp)

	second := result.Posts[1]
	assert.Equal(t, int64(2500), *second.Likes)
	assert.Nil(t, second.Comments)
	assert.Equal(t, []string{"#dom"}, second.Hashtags)
	assert.Equal(t, int64(1_700_000_000-2*3600), *second.Timestamp)

	third := result.Posts[2]
	assert.True(t, third.Failed())
	assert.Contains(t, third.Error, "timeout")

	assert.Equal(t, []string{firstPost, secondPost, thirdPost}, session.loaded)
	assert.Equal(t, 2, session.scrolls, "no scroll after the target is reached")
	assert.True(t, session.closed)

	assert.Equal(t, 3, stats.PostsFound)
	assert.Equal(t, 1, stats.PostsFailed)
	assert.Equal(t, 3, stats.LinkBatches)
}

func TestScrapeProfile_ProfileFailure(t *testing.T) {
	session := &fakeSession{profileErr: fmt.Errorf("%w: navigation failed", extract.ErrProfileLoad)}
	s := newTestScraper(session, 3, nil)

	result := s.ScrapeProfile(context.Background(), "ghost", 5)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "ghost")
	assert.Nil(t, result.Profile)
	assert.Empty(t, result.Posts)
	assert.Zero(t, session.scrolls)
	assert.Empty(t, session.loaded)
}

func TestScrapeProfile_SessionUnavailable(t *testing.T) {
	s := New(Options{
		Sessions: func(context.Context) (Session, error) { return nil, errors.New("no chrome") },
	})

	result := s.ScrapeProfile(context.Background(), "creator", 1)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "no chrome")
}

func TestScrapeProfile_ScrollErrorKeepsCollectedIDs(t *testing.T) {
	session := &fakeSession{
		profile:  profileHTML,
		batchErr: errors.New("scroll failed"),
		posts:    map[string]string{firstPost: firstPostHTML},
	}
	s := newTestScraper(session, 4, nil)

	result := s.ScrapeProfile(context.Background(), "creator", 5)
	require.False(t, result.Failed())
	require.Len(t, result.Posts, 1)
	assert.Equal(t, firstPost, result.Posts[0].PostID)
	assert.Equal(t, 1, session.scrolls)
}

func TestScrapeProfile_NoPosts(t *testing.T) {
	session := &fakeSession{profile: `<html><body><h2 data-e2e="user-bio">only dom</h2></body></html>`}
	s := newTestScraper(session, 2, nil)

	result := s.ScrapeProfile(context.Background(), "creator", 5)
	require.False(t, result.Failed())
	assert.Equal(t, "only dom", *result.Profile.Bio)
	assert.Empty(t, result.Posts)
	assert.Equal(t, 2, session.scrolls)
}

func TestScrapeProfile_Reconfigure(t *testing.T) {
	session := &fakeSession{
		profile: `<html><body><div class="p" href="/@creator/video/` + firstPost + `">p</div></body></html>`,
		posts:   map[string]string{firstPost: firstPostHTML},
	}
	s := newTestScraper(session, 0, nil)
	s.Reconfigure(nil, "div.p")

	result := s.ScrapeProfile(context.Background(), "creator", 1)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, firstPost, result.Posts[0].PostID)
}

func TestLinkBatches_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &fakeSession{batches: [][]string{{"a"}, {"b"}, {"c"}}}

	var got [][]string
	for batch := range LinkBatches(ctx, session, []string{"first"}, 3, utils.NopLogger()) {
		got = append(got, batch)
		if len(got) == 2 {
			cancel()
		}
	}
	assert.Equal(t, [][]string{{"first"}, {"a"}}, got)
}

func TestScrapeProfile_ApplyConfig(t *testing.T) {
	session := &fakeSession{
		profile: `<html><body><p class="about">reloaded bio</p></body></html>`,
	}
	s := newTestScraper(session, 0, nil)

	cfg := config.Default()
	cfg.Selectors.Profile.Bio = []string{"p.about"}
	s.ApplyConfig(cfg, nil)

	result := s.ScrapeProfile(context.Background(), "creator", 1)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "reloaded bio", *result.Profile.Bio)
}

func TestScrapePost(t *testing.T) {
	session := &fakeSession{posts: map[string]string{firstPost: firstPostHTML}}
	s := newTestScraper(session, 0, nil)

	rec, err := s.ScrapePost(context.Background(), "creator", "https://example.test/@creator/video/"+firstPost+"?lang=en")
	require.NoError(t, err)
	assert.Empty(t, rec.Error)
	assert.Equal(t, firstPost, rec.PostID)
	require.NotNil(t, rec.Likes)
	assert.Equal(t, int64(1200), *rec.Likes)
	assert.Equal(t, []string{"#beach", "#sun"}, rec.Hashtags)
	assert.Equal(t, []string{firstPost}, session.loaded)
	assert.True(t, session.closed)
}

func TestScrapePost_LoadFailure(t *testing.T) {
	session := &fakeSession{postErrs: map[string]error{secondPost: fmt.Errorf("%w: timeout", extract.ErrPostLoad)}}
	s := newTestScraper(session, 0, nil)

	rec, err := s.ScrapePost(context.Background(), "creator", secondPost)
	require.NoError(t, err)
	assert.Equal(t, secondPost, rec.PostID)
	assert.Contains(t, rec.Error, "timeout")
	assert.Nil(t, rec.Likes)
}

func TestScrapePost_InvalidReference(t *testing.T) {
	session := &fakeSession{}
	s := newTestScraper(session, 0, nil)

	_, err := s.ScrapePost(context.Background(), "creator", "/@creator/video/abc")
	assert.ErrorContains(t, err, "invalid post id")
	assert.Empty(t, session.loaded)
}
