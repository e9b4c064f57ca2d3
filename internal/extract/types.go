// internal/extract/types.go

package extract

import (
	"errors"

	"github.com/goccy/go-json"
)

// Sentinel errors shared by the engine and its collaborators.
var (
	ErrProfileLoad   = errors.New("profile page could not be loaded")
	ErrPostLoad      = errors.New("post page could not be loaded")
	ErrNotObserved   = errors.New("field not observed")
	ErrStateNotFound = errors.New("structured state not found")
)

// Field names one logical value observed on a page.
type Field string

const (
	FieldLikes       Field = "likes"
	FieldComments    Field = "comments"
	FieldShares      Field = "shares"
	FieldViews       Field = "views"
	FieldDescription Field = "description"
	FieldTimestamp   Field = "timestamp"
	FieldBio         Field = "bio"
	FieldFollowers   Field = "followers"
	FieldFollowing   Field = "following"
	FieldVerified    Field = "verified"
)

// Observation holds the raw text seen for each field in one page snapshot.
type Observation map[Field]string

// Get returns the observed text for f or ErrNotObserved.
func (o Observation) Get(f Field) (string, error) {
	v, ok := o[f]
	if !ok {
		return "", ErrNotObserved
	}
	return v, nil
}

// Observer reads DOM-level text for profile and post fields out of a raw blob.
type Observer interface {
	ObserveProfile(blob string) (Observation, error)
	ObservePost(blob string) (Observation, error)
}

type nopObserver struct{}

func (nopObserver) ObserveProfile(string) (Observation, error) { return nil, ErrNotObserved }
func (nopObserver) ObservePost(string) (Observation, error)    { return nil, ErrNotObserved }

// PostRecord is the resolved metadata of one post. Nil pointers are unresolved values.
type PostRecord struct {
	PostID      string   `json:"post_id" yaml:"post_id"`
	Likes       *int64   `json:"likes" yaml:"likes"`
	Comments    *int64   `json:"comments" yaml:"comments"`
	Shares      *int64   `json:"shares" yaml:"shares"`
	Views       *int64   `json:"views" yaml:"views"`
	Timestamp   *int64   `json:"timestamp" yaml:"timestamp"`
	Description *string  `json:"description" yaml:"description"`
	Hashtags    []string `json:"hashtags" yaml:"hashtags"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the post could not be processed at all.
func (p PostRecord) Failed() bool { return p.Error != "" }

type postView struct {
	PostID      string   `json:"post_id" yaml:"post_id"`
	Likes       *int64   `json:"likes" yaml:"likes"`
	Comments    *int64   `json:"comments" yaml:"comments"`
	Shares      *int64   `json:"shares" yaml:"shares"`
	Views       *int64   `json:"views" yaml:"views"`
	Timestamp   *int64   `json:"timestamp" yaml:"timestamp"`
	Description *string  `json:"description" yaml:"description"`
	Hashtags    []string `json:"hashtags" yaml:"hashtags"`
}

type postErrorView struct {
	PostID string `json:"post_id" yaml:"post_id"`
	Error  string `json:"error" yaml:"error"`
}

func (p PostRecord) view() interface{} {
	if p.Failed() {
		return postErrorView{PostID: p.PostID, Error: p.Error}
	}
	tags := p.Hashtags
	if tags == nil {
		tags = []string{}
	}
	return postView{
		PostID:      p.PostID,
		Likes:       p.Likes,
		Comments:    p.Comments,
		Shares:      p.Shares,
		Views:       p.Views,
		Timestamp:   p.Timestamp,
		Description: p.Description,
		Hashtags:    tags,
	}
}

// MarshalJSON emits either the full post object or the post_id/error pair.
func (p PostRecord) MarshalJSON() ([]byte, error) { return json.Marshal(p.view()) }

// MarshalYAML mirrors MarshalJSON.
func (p PostRecord) MarshalYAML() (interface{}, error) { return p.view(), nil }

// ProfileRecord is the resolved metadata of the profile itself.
type ProfileRecord struct {
	Username  string  `json:"username" yaml:"username"`
	Bio       *string `json:"bio" yaml:"bio"`
	Followers *int64  `json:"followers" yaml:"followers"`
	Following *int64  `json:"following" yaml:"following"`
	Likes     *int64  `json:"likes" yaml:"likes"`
	Verified  *bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// AggregateResult is either a profile with its posts or a single top-level error.
type AggregateResult struct {
	Profile *ProfileRecord `json:"profile,omitempty" yaml:"profile,omitempty"`
	Posts   []PostRecord   `json:"posts,omitempty" yaml:"posts,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the profile itself could not be loaded.
func (r *AggregateResult) Failed() bool { return r.Error != "" }

type resultView struct {
	Profile *ProfileRecord `json:"profile" yaml:"profile"`
	Posts   []PostRecord   `json:"posts" yaml:"posts"`
}

type resultErrorView struct {
	Error string `json:"error" yaml:"error"`
}

func (r AggregateResult) view() interface{} {
	if r.Error != "" {
		return resultErrorView{Error: r.Error}
	}
	posts := r.Posts
	if posts == nil {
		posts = []PostRecord{}
	}
	return resultView{Profile: r.Profile, Posts: posts}
}

// MarshalJSON emits {profile, posts} or {error}.
func (r AggregateResult) MarshalJSON() ([]byte, error) { return json.Marshal(r.view()) }

// MarshalYAML mirrors MarshalJSON.
func (r AggregateResult) MarshalYAML() (interface{}, error) { return r.view(), nil }
