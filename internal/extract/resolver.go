// internal/extract/resolver.go

package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Source identifies where a candidate value came from.
type Source string

const (
	SourceStructured Source = "structured"
	SourceDOM        Source = "dom"
	SourcePostID     Source = "post_id"
	SourceNone       Source = "none"
)

// Outcome classifies a single field resolution.
type Outcome string

const (
	// OutcomeResolved means a candidate was selected and transformed to a value.
	OutcomeResolved Outcome = "resolved"
	// OutcomeRejected means a candidate was selected but did not transform.
	OutcomeRejected Outcome = "rejected"
	// OutcomeUnresolved means no source produced a candidate.
	OutcomeUnresolved Outcome = "unresolved"
)

// TraceEvent describes how one field was resolved.
type TraceEvent struct {
	// Subject is the post id, or the username for profile fields.
	Subject string
	Field   Field
	Source  Source
	Outcome Outcome
}

// TraceFunc receives one event per field resolution.
type TraceFunc func(TraceEvent)

// Extractor yields one raw candidate for a field from a single source.
type Extractor struct {
	Source  Source
	Extract func() (string, error)
}

// ResolveField picks the first extractor that succeeds with non-blank text and
// returns transform of that text. Extractor errors and panics count as "no value".
// A selected candidate that fails to transform leaves the field unresolved; later
// extractors are not consulted.
func ResolveField[T any](trace TraceFunc, subject string, field Field, transform func(string) *T, extractors ...Extractor) *T {
	for _, ex := range extractors {
		if ex.Extract == nil {
			continue
		}
		raw, err := safeExtract(ex.Extract)
		if err != nil || strings.TrimSpace(raw) == "" {
			continue
		}
		v := transform(raw)
		outcome := OutcomeResolved
		if v == nil {
			outcome = OutcomeRejected
		}
		emit(trace, TraceEvent{Subject: subject, Field: field, Source: ex.Source, Outcome: outcome})
		return v
	}
	emit(trace, TraceEvent{Subject: subject, Field: field, Source: SourceNone, Outcome: OutcomeUnresolved})
	return nil
}

func safeExtract(fn func() (string, error)) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return fn()
}

func emit(trace TraceFunc, ev TraceEvent) {
	if trace != nil {
		trace(ev)
	}
}

// TextValue trims raw and leaves blank text unresolved.
func TextValue(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// BoolValue parses true/false style text.
func BoolValue(raw string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &b
}
