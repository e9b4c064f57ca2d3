// internal/extract/resolver_test.go

package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(src Source, raw string) Extractor {
	return Extractor{Source: src, Extract: func() (string, error) { return raw, nil }}
}

func failing(src Source) Extractor {
	return Extractor{Source: src, Extract: func() (string, error) { return "", errors.New("element missing") }}
}

func TestResolveField_StructuredWins(t *testing.T) {
	domCalls := 0
	dom := Extractor{Source: SourceDOM, Extract: func() (string, error) {
		domCalls++
		return "50", nil
	}}

	var events []TraceEvent
	got := ResolveField(func(ev TraceEvent) { events = append(events, ev) }, postA, FieldLikes,
		NormalizeCount, fixed(SourceStructured, "42"), dom)

	require.NotNil(t, got)
	assert.Equal(t, int64(42), *got)
	assert.Zero(t, domCalls)
	assert.Equal(t, []TraceEvent{{Subject: postA, Field: FieldLikes, Source: SourceStructured, Outcome: OutcomeResolved}}, events)
}

func TestResolveField_Fallbacks(t *testing.T) {
	panicking := Extractor{Source: SourceStructured, Extract: func() (string, error) { panic("boom") }}

	tests := []struct {
		name       string
		extractors []Extractor
		want       *int64
	}{
		{"error falls through", []Extractor{failing(SourceStructured), fixed(SourceDOM, "1.2K")}, ptr[int64](1200)},
		{"blank falls through", []Extractor{fixed(SourceStructured, "  "), fixed(SourceDOM, "7")}, ptr[int64](7)},
		{"panic falls through", []Extractor{panicking, fixed(SourceDOM, "8")}, ptr[int64](8)},
		{"nil extract skipped", []Extractor{{Source: SourceStructured}, fixed(SourceDOM, "9")}, ptr[int64](9)},
		{"all fail", []Extractor{failing(SourceStructured), failing(SourceDOM)}, nil},
		{"no extractors", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveField(nil, postA, FieldLikes, NormalizeCount, tt.extractors...))
		})
	}
}

func TestResolveField_SelectedCandidateIsFinal(t *testing.T) {
	var events []TraceEvent
	got := ResolveField(func(ev TraceEvent) { events = append(events, ev) }, postA, FieldViews,
		NormalizeCount, fixed(SourceStructured, "n/a"), fixed(SourceDOM, "10"))

	assert.Nil(t, got)
	require.Len(t, events, 1)
	assert.Equal(t, OutcomeRejected, events[0].Outcome)
	assert.Equal(t, SourceStructured, events[0].Source)
}

func TestResolveField_UnresolvedTrace(t *testing.T) {
	var events []TraceEvent
	got := ResolveField(func(ev TraceEvent) { events = append(events, ev) }, "creator", FieldBio,
		TextValue, failing(SourceStructured))

	assert.Nil(t, got)
	assert.Equal(t, []TraceEvent{{Subject: "creator", Field: FieldBio, Source: SourceNone, Outcome: OutcomeUnresolved}}, events)
}

func TestValueTransforms(t *testing.T) {
	assert.Equal(t, ptr("trimmed"), TextValue("  trimmed \n"))
	assert.Nil(t, TextValue(" "))
	assert.Equal(t, ptr(true), BoolValue("true"))
	assert.Equal(t, ptr(false), BoolValue(" false"))
	assert.Nil(t, BoolValue("maybe"))
}
