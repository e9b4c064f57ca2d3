// internal/extract/engine.go

package extract

import (
	"sync"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Config configures an Engine. Every field is optional.
type Config struct {
	// Observer supplies DOM-level fallback text.
	Observer Observer
	// Locator finds structured state; NewStateLocator() when nil.
	Locator *StateLocator
	// Now is the observation instant used for relative times.
	Now   func() time.Time
	Trace TraceFunc
	// IDTimestampFallback adds a lowest priority timestamp derived from the post id.
	IDTimestampFallback bool
	Logger              utils.Logger
}

// Engine resolves profile and post records from raw page blobs.
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	observer   Observer
	locator    *StateLocator
	now        func() time.Time
	trace      TraceFunc
	idFallback bool
	logger     utils.Logger
}

// NewEngine creates an Engine from config, which may be nil.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = &Config{}
	}
	e := &Engine{
		observer:   config.Observer,
		locator:    config.Locator,
		now:        config.Now,
		trace:      config.Trace,
		idFallback: config.IDTimestampFallback,
		logger:     config.Logger,
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.locator == nil {
		e.locator = NewStateLocator()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = utils.NopLogger()
	}
	return e
}

// BuildPost composes the record for one post. A non-nil loadErr short-circuits
// to an error-only record before any field is resolved.
func (e *Engine) BuildPost(id, blob string, loadErr error) PostRecord {
	if loadErr != nil {
		return PostRecord{PostID: id, Error: loadErr.Error()}
	}

	item := e.locator.Locate(blob, id)
	observe := sync.OnceValues(func() (Observation, error) {
		return e.observer.ObservePost(blob)
	})

	structured := func(read func(Item) (string, error)) Extractor {
		return Extractor{Source: SourceStructured, Extract: func() (string, error) {
			if item == nil {
				return "", ErrStateNotFound
			}
			return read(item)
		}}
	}
	stat := func(keys ...string) Extractor {
		return structured(func(it Item) (string, error) { return it.Stat(keys...) })
	}
	dom := func(f Field) Extractor {
		return Extractor{Source: SourceDOM, Extract: func() (string, error) {
			obs, err := observe()
			if err != nil {
				return "", err
			}
			return obs.Get(f)
		}}
	}

	rec := PostRecord{PostID: id}
	rec.Likes = ResolveField(e.trace, id, FieldLikes, NormalizeCount, stat("diggCount"), dom(FieldLikes))
	rec.Comments = ResolveField(e.trace, id, FieldComments, NormalizeCount, stat("commentCount"), dom(FieldComments))
	rec.Shares = ResolveField(e.trace, id, FieldShares, NormalizeCount, stat("shareCount"), dom(FieldShares))
	rec.Views = ResolveField(e.trace, id, FieldViews, NormalizeCount, stat("playCount"), dom(FieldViews))
	rec.Description = ResolveField(e.trace, id, FieldDescription, TextValue,
		structured(func(it Item) (string, error) { return it.String("desc") }), dom(FieldDescription))

	if rec.Description != nil {
		rec.Hashtags = ExtractHashtags(*rec.Description)
	} else {
		rec.Hashtags = []string{}
	}

	epoch := func(key string) TimeCandidate {
		return TimeCandidate{Source: SourceStructured, Kind: KindEpoch,
			Extract: structured(func(it Item) (string, error) { return it.String(key) }).Extract}
	}
	// create_time appears in older payloads
	candidates := []TimeCandidate{
		epoch("createTime"),
		epoch("create_time"),
		{Source: SourceDOM, Kind: KindRelative, Extract: dom(FieldTimestamp).Extract},
	}
	if e.idFallback {
		candidates = append(candidates, PostIDCandidate(id))
	}
	ts, src := resolveTimestamp(e.now(), candidates)
	rec.Timestamp = ts
	outcome := OutcomeResolved
	if ts == nil {
		outcome = OutcomeUnresolved
	}
	emit(e.trace, TraceEvent{Subject: id, Field: FieldTimestamp, Source: src, Outcome: outcome})

	e.logger.WithFields(map[string]interface{}{
		"post_id":    id,
		"structured": item != nil,
	}).Debug("post record built")
	return rec
}

// ResolveProfile resolves profile fields from the profile page blob.
func (e *Engine) ResolveProfile(username, blob string) ProfileRecord {
	user := e.locator.LocateUser(blob, username)
	observe := sync.OnceValues(func() (Observation, error) {
		return e.observer.ObserveProfile(blob)
	})

	structured := func(read func(Item) (string, error)) Extractor {
		return Extractor{Source: SourceStructured, Extract: func() (string, error) {
			if user == nil {
				return "", ErrStateNotFound
			}
			return read(user)
		}}
	}
	stat := func(keys ...string) Extractor {
		return structured(func(it Item) (string, error) { return it.Stat(keys...) })
	}
	dom := func(f Field) Extractor {
		return Extractor{Source: SourceDOM, Extract: func() (string, error) {
			obs, err := observe()
			if err != nil {
				return "", err
			}
			return obs.Get(f)
		}}
	}

	p := ProfileRecord{Username: username}
	p.Bio = ResolveField(e.trace, username, FieldBio, TextValue,
		structured(func(it Item) (string, error) { return it.String("signature") }), dom(FieldBio))
	p.Followers = ResolveField(e.trace, username, FieldFollowers, NormalizeCount, stat("followerCount"), dom(FieldFollowers))
	p.Following = ResolveField(e.trace, username, FieldFollowing, NormalizeCount, stat("followingCount"), dom(FieldFollowing))
	p.Likes = ResolveField(e.trace, username, FieldLikes, NormalizeCount, stat("heartCount", "heart"), dom(FieldLikes))
	p.Verified = ResolveField(e.trace, username, FieldVerified, BoolValue,
		structured(func(it Item) (string, error) { return it.String("verified") }))
	return p
}
