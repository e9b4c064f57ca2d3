// internal/output/rows.go
package output

import (
	"strconv"
	"strings"
	"time"
)

// ProfileRow is the flat form of a run's profile, used by tabular and
// database sinks. An error-only run has only the identifying columns and Error.
type ProfileRow struct {
	RunID     string    `json:"run_id" bson:"run_id"`
	Username  string    `json:"username" bson:"username"`
	ScrapedAt time.Time `json:"scraped_at" bson:"scraped_at"`
	Bio       *string   `json:"bio" bson:"bio"`
	Followers *int64    `json:"followers" bson:"followers"`
	Following *int64    `json:"following" bson:"following"`
	Likes     *int64    `json:"likes" bson:"likes"`
	Verified  *bool     `json:"verified,omitempty" bson:"verified,omitempty"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
}

// PostRow is the flat form of one post. Position keeps the collection order.
type PostRow struct {
	RunID       string   `json:"run_id" bson:"run_id"`
	Position    int      `json:"position" bson:"position"`
	PostID      string   `json:"post_id" bson:"post_id"`
	Likes       *int64   `json:"likes" bson:"likes"`
	Comments    *int64   `json:"comments" bson:"comments"`
	Shares      *int64   `json:"shares" bson:"shares"`
	Views       *int64   `json:"views" bson:"views"`
	Description *string  `json:"description" bson:"description"`
	Hashtags    []string `json:"hashtags" bson:"hashtags"`
	Timestamp   *int64   `json:"timestamp" bson:"timestamp"`
	Error       string   `json:"error,omitempty" bson:"error,omitempty"`
}

// Flatten splits a run into its profile row and post rows.
func Flatten(run Run) (ProfileRow, []PostRow) {
	profile := ProfileRow{
		RunID:     run.ID,
		Username:  run.Username,
		ScrapedAt: run.ScrapedAt.UTC(),
	}
	if run.Result == nil {
		return profile, nil
	}
	if run.Result.Failed() {
		profile.Error = run.Result.Error
		return profile, nil
	}
	if p := run.Result.Profile; p != nil {
		profile.Bio = p.Bio
		profile.Followers = p.Followers
		profile.Following = p.Following
		profile.Likes = p.Likes
		profile.Verified = p.Verified
	}

	posts := make([]PostRow, 0, len(run.Result.Posts))
	for i, p := range run.Result.Posts {
		row := PostRow{RunID: run.ID, Position: i + 1, PostID: p.PostID, Error: p.Error}
		if !p.Failed() {
			row.Likes = p.Likes
			row.Comments = p.Comments
			row.Shares = p.Shares
			row.Views = p.Views
			row.Description = p.Description
			row.Hashtags = p.Hashtags
			row.Timestamp = p.Timestamp
		}
		if row.Hashtags == nil {
			row.Hashtags = []string{}
		}
		posts = append(posts, row)
	}
	return profile, posts
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func textCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func boolCell(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func hashtagCell(tags []string) string {
	return strings.Join(tags, " ")
}

// nullable converts optional values into database/sql arguments.
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
