// internal/extract/timestamp_test.go

package extract

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func TestResolveTimestamp_EpochWinsOverRelative(t *testing.T) {
	got := ResolveTimestamp(fixedNow, EpochCandidate("90"), RelativeCandidate("3 hours ago"))
	require.NotNil(t, got)
	assert.Equal(t, int64(90), *got)
}

func TestResolveTimestamp_FallsBackToRelative(t *testing.T) {
	got := ResolveTimestamp(time.Now(), EpochCandidate("not a number"), RelativeCandidate("2 days ago"))
	require.NotNil(t, got)
	want := time.Now().Add(-48 * time.Hour).Unix()
	assert.InDelta(t, want, *got, 1)
}

func TestResolveTimestamp_Relative(t *testing.T) {
	base := fixedNow.Unix()
	tests := []struct {
		raw  string
		want *int64
	}{
		{"30 seconds ago", ptr(base - 30)},
		{"5m ago", ptr(base - 300)},
		{"1 minute ago", ptr(base - 60)},
		{"3 Hours Ago", ptr(base - 3*3600)},
		{"2h", ptr(base - 2*3600)},
		{"4d ago", ptr(base - 4*86400)},
		{"1 week ago", ptr(base - 7*86400)},
		{"2w", ptr(base - 14*86400)},
		{"3 months ago", nil},
		{"1 mo", nil},
		{"1 year ago", nil},
		{"2y", nil},
		{"yesterday", nil},
		{"ago", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTimestamp(fixedNow, RelativeCandidate(tt.raw)))
		})
	}
}

func TestResolveTimestamp_NoCandidate(t *testing.T) {
	assert.Nil(t, ResolveTimestamp(fixedNow))
	assert.Nil(t, ResolveTimestamp(fixedNow, EpochCandidate(""), EpochCandidate("-5")))
}

func TestResolveTimestamp_LazyCandidates(t *testing.T) {
	calls := 0
	lazy := TimeCandidate{Source: SourceDOM, Kind: KindRelative, Extract: func() (string, error) {
		calls++
		return "1 hour ago", nil
	}}
	got := ResolveTimestamp(fixedNow, EpochCandidate("1690000000"), lazy)
	require.NotNil(t, got)
	assert.Equal(t, int64(1_690_000_000), *got)
	assert.Zero(t, calls)

	failing := TimeCandidate{Kind: KindEpoch, Extract: func() (string, error) { return "", errors.New("gone") }}
	got = ResolveTimestamp(fixedNow, failing, lazy)
	require.NotNil(t, got)
	assert.Equal(t, fixedNow.Unix()-3600, *got)
	assert.Equal(t, 1, calls)
}

func TestResolveTimestamp_PostID(t *testing.T) {
	id := strconv.FormatUint(uint64(1_690_000_000)<<32|12345, 10)
	got := ResolveTimestamp(fixedNow, PostIDCandidate(id))
	require.NotNil(t, got)
	assert.Equal(t, int64(1_690_000_000), *got)

	future := strconv.FormatUint(uint64(fixedNow.Unix()+10*86400)<<32, 10)
	assert.Nil(t, ResolveTimestamp(fixedNow, PostIDCandidate(future)))
	assert.Nil(t, ResolveTimestamp(fixedNow, PostIDCandidate("abc")))
}
