// internal/extract/aggregator.go

package extract

import (
	"context"
	"errors"
	"fmt"
)

// Stage is a state of one aggregation call. The machine is linear:
// init -> profile_resolved -> post_processing* -> done, or init -> failed.
type Stage string

const (
	StageInit            Stage = "init"
	StageProfileResolved Stage = "profile_resolved"
	StagePostProcessing  Stage = "post_processing"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// PostFetcher acquires the raw blob of one post. It is called lazily, one post at a time.
type PostFetcher func(ctx context.Context, postID string) (string, error)

// AggregateRequest carries everything one aggregation needs.
type AggregateRequest struct {
	Username    string
	ProfileBlob string
	// ProfileErr signals that the profile page never reached a usable state.
	ProfileErr error
	PostIDs    []string
	// MaxPosts caps the number of posts processed; zero means all PostIDs.
	MaxPosts  int
	FetchPost PostFetcher
}

// Aggregate resolves the profile and then builds each post in order. Only a
// profile load failure produces a top-level error; post failures are recorded
// on the post. Cancelling ctx stops before the next post and keeps what was built.
func (e *Engine) Aggregate(ctx context.Context, req AggregateRequest) *AggregateResult {
	log := e.logger.WithField("username", req.Username)
	log.WithField("stage", StageInit).Debug("aggregation started")

	if req.ProfileErr != nil {
		log.WithField("stage", StageFailed).Warnf("profile load failed: %v", req.ProfileErr)
		return &AggregateResult{Error: profileError(req.Username, req.ProfileErr)}
	}

	profile := e.ResolveProfile(req.Username, req.ProfileBlob)
	log.WithField("stage", StageProfileResolved).Debug("profile resolved")

	ids := uniqueIDs(req.PostIDs, req.MaxPosts)
	posts := make([]PostRecord, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			log.Warnf("aggregation cancelled after %d of %d posts", len(posts), len(ids))
			break
		}
		log.WithFields(map[string]interface{}{"stage": StagePostProcessing, "post_id": id}).Debug("processing post")
		posts = append(posts, e.processPost(ctx, id, req.FetchPost))
	}

	log.WithFields(map[string]interface{}{"stage": StageDone, "posts": len(posts)}).Info("aggregation finished")
	return &AggregateResult{Profile: &profile, Posts: posts}
}

// processPost contains any failure, including a panic, to the post's own record.
func (e *Engine) processPost(ctx context.Context, id string, fetch PostFetcher) (rec PostRecord) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("post_id", id).Errorf("post processing panicked: %v", r)
			rec = PostRecord{PostID: id, Error: fmt.Sprintf("post processing failed: %v", r)}
		}
	}()
	if fetch == nil {
		return e.BuildPost(id, "", fmt.Errorf("%w: no post fetcher configured", ErrPostLoad))
	}
	blob, err := fetch(ctx, id)
	if err != nil && !errors.Is(err, ErrPostLoad) {
		err = fmt.Errorf("%w: %v", ErrPostLoad, err)
	}
	return e.BuildPost(id, blob, err)
}

func profileError(username string, err error) string {
	if errors.Is(err, ErrProfileLoad) {
		return fmt.Sprintf("profile @%s: %v", username, err)
	}
	return fmt.Sprintf("profile @%s: %v: %v", username, ErrProfileLoad, err)
}

func uniqueIDs(ids []string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
