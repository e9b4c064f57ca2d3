// internal/extract/timestamp.go

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeKind selects how a timestamp candidate's raw text is interpreted.
type TimeKind int

const (
	// KindEpoch is an absolute unix timestamp in seconds.
	KindEpoch TimeKind = iota
	// KindRelative is a phrase such as "3 hours ago" or "2d".
	KindRelative
	// KindPostID derives the creation second from the upper 32 bits of a post id.
	KindPostID
)

// TimeCandidate is one observation of a post's creation time. Extract is only
// called when every higher priority candidate has failed.
type TimeCandidate struct {
	Source  Source
	Kind    TimeKind
	Extract func() (string, error)
}

// EpochCandidate wraps literal epoch text.
func EpochCandidate(raw string) TimeCandidate {
	return TimeCandidate{Source: SourceStructured, Kind: KindEpoch, Extract: literal(raw)}
}

// RelativeCandidate wraps literal relative-time text.
func RelativeCandidate(raw string) TimeCandidate {
	return TimeCandidate{Source: SourceDOM, Kind: KindRelative, Extract: literal(raw)}
}

// PostIDCandidate wraps a post identifier for id-derived resolution.
func PostIDCandidate(id string) TimeCandidate {
	return TimeCandidate{Source: SourcePostID, Kind: KindPostID, Extract: literal(id)}
}

func literal(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

// ResolveTimestamp returns the first candidate that resolves, evaluated against now.
func ResolveTimestamp(now time.Time, candidates ...TimeCandidate) *int64 {
	ts, _ := resolveTimestamp(now, candidates)
	return ts
}

func resolveTimestamp(now time.Time, candidates []TimeCandidate) (*int64, Source) {
	for _, c := range candidates {
		if c.Extract == nil {
			continue
		}
		raw, err := safeExtract(c.Extract)
		if err != nil {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var (
			ts int64
			ok bool
		)
		switch c.Kind {
		case KindEpoch:
			ts, ok = parseEpoch(raw)
		case KindRelative:
			ts, ok = parseRelative(raw, now)
		case KindPostID:
			ts, ok = epochFromPostID(raw, now)
		}
		if ok {
			return &ts, c.Source
		}
	}
	return nil, SourceNone
}

func parseEpoch(raw string) (int64, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

var relativePattern = regexp.MustCompile(`(\d+)\s*([a-z]+)`)

// Months and years have no fixed length and are not accepted.
var relativeUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "wk": 7 * 24 * time.Hour, "wks": 7 * 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

func parseRelative(raw string, now time.Time) (int64, bool) {
	m := relativePattern.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return 0, false
	}
	unit, ok := relativeUnits[m[2]]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return now.Add(-time.Duration(n) * unit).Unix(), true
}

// epochFromPostID rejects ids whose embedded second lies in the future.
func epochFromPostID(raw string, now time.Time) (int64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	ts := int64(id >> 32)
	if ts <= 0 || ts > now.Add(24*time.Hour).Unix() {
		return 0, false
	}
	return ts, true
}
