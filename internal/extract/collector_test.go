// internal/extract/collector_test.go

package extract

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostIDFromCandidate(t *testing.T) {
	tests := []struct {
		candidate string
		want      string
		ok        bool
	}{
		{"https://www.tiktok.com/@user/video/7234567890123456789", "7234567890123456789", true},
		{"https://www.tiktok.com/@user/video/7234567890123456789?is_from_webapp=1", "7234567890123456789", true},
		{"/@user/video/7234567890123456789#comments", "7234567890123456789", true},
		{"/@user/photo/7234567890123456789", "7234567890123456789", true},
		{"/@user/video/7234567890123456789/", "7234567890123456789", true},
		{"7234567890123456789", "7234567890123456789", true},
		{" 72345678901 ", "72345678901", true},
		{"/@user/video/my-cool-video", "", false},
		{"/@user", "", false},
		{"1234567890", "", false},
		{"123456789012345678901", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, ok := PostIDFromCandidate(tt.candidate)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func idN(n int) string {
	return "/@user/video/72345678901234567" + string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// countingBatches yields batches and records how many were pulled.
func countingBatches(pulled *int, batches ...[]string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, b := range batches {
			*pulled++
			if !yield(b) {
				return
			}
		}
	}
}

func TestCollectPostIDs_StopsAtTarget(t *testing.T) {
	pulled := 0
	got := CollectPostIDs(countingBatches(&pulled,
		[]string{idN(1), idN(2), idN(3), idN(4), idN(5)},
		[]string{idN(6)},
	), 3)

	assert.Equal(t, []string{"7234567890123456701", "7234567890123456702", "7234567890123456703"}, got)
	assert.Equal(t, 1, pulled)
}

func TestCollectPostIDs_DedupesAcrossBatches(t *testing.T) {
	pulled := 0
	got := CollectPostIDs(countingBatches(&pulled,
		[]string{idN(1), "/@user/video/bad", idN(1)},
		[]string{idN(1), idN(2)},
		[]string{idN(2)},
	), 5)

	assert.Equal(t, []string{"7234567890123456701", "7234567890123456702"}, got)
	assert.Equal(t, 3, pulled)
}

func TestCollectPostIDs_ZeroTarget(t *testing.T) {
	pulled := 0
	got := CollectPostIDs(countingBatches(&pulled, []string{idN(1)}), 0)
	assert.Empty(t, got)
	assert.Zero(t, pulled)

	assert.Empty(t, CollectPostIDs(nil, 3))
}

func TestCollector_Offer(t *testing.T) {
	c := NewCollector(2)
	assert.False(t, c.Offer([]string{idN(1)}))
	assert.True(t, c.Offer([]string{idN(1), idN(2), idN(3)}))
	assert.True(t, c.Done())

	ids := c.IDs()
	assert.Len(t, ids, 2)
	ids[0] = "mutated"
	assert.False(t, slices.Contains(c.IDs(), "mutated"))
}
