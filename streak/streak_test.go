package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, day(s))
	}
	return out
}

func TestComputeEmptyHistory(t *testing.T) {
	r := Compute(nil, day("2025-06-10"))
	assert.Equal(t, 0, r.Current)
	assert.Equal(t, 0, r.Longest)
	assert.Nil(t, r.LastCheckin)
}

func TestComputeSingleEntry(t *testing.T) {
	asOf := day("2025-06-10")

	r := Compute(days("2025-06-10"), asOf)
	assert.Equal(t, 1, r.Current, "checked in today")
	assert.Equal(t, 1, r.Longest)

	r = Compute(days("2025-06-09"), asOf)
	assert.Equal(t, 1, r.Current, "yesterday is within the grace window")
	assert.Equal(t, 1, r.Longest)

	r = Compute(days("2025-06-07"), asOf)
	assert.Equal(t, 0, r.Current, "three days ago is broken")
	assert.Equal(t, 1, r.Longest)
}

func TestComputeConsecutiveRun(t *testing.T) {
	asOf := day("2025-06-10")
	r := Compute(days("2025-06-10", "2025-06-09", "2025-06-08"), asOf)
	assert.Equal(t, 3, r.Current)
	assert.Equal(t, 3, r.Longest)
	require.NotNil(t, r.LastCheckin)
	assert.True(t, r.LastCheckin.Equal(day("2025-06-10")))
}

func TestComputeGapSplitsRuns(t *testing.T) {
	asOf := day("2025-06-10")
	// gap on 06-09
	r := Compute(days("2025-06-10", "2025-06-08"), asOf)
	assert.Equal(t, 1, r.Current)
	assert.Equal(t, 1, r.Longest)
}

func TestComputeBrokenStreakKeepsLongest(t *testing.T) {
	asOf := day("2025-06-10")
	// five-day run ending 06-07, nothing since
	r := Compute(days("2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06", "2025-06-07"), asOf)
	assert.Equal(t, 0, r.Current)
	assert.Equal(t, 5, r.Longest)
}

func TestComputeLongestFromOlderRun(t *testing.T) {
	asOf := day("2025-06-10")
	// old four-day run, current two-day run
	r := Compute(days(
		"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04",
		"2025-06-09", "2025-06-10",
	), asOf)
	assert.Equal(t, 2, r.Current)
	assert.Equal(t, 4, r.Longest)
}

func TestComputeUnorderedAndDuplicateInput(t *testing.T) {
	asOf := day("2025-06-10")
	r := Compute(days("2025-06-09", "2025-06-10", "2025-06-09", "2025-06-08"), asOf)
	assert.Equal(t, 3, r.Current)
	assert.Equal(t, 3, r.Longest)
}

func TestComputeBackfillClosesGap(t *testing.T) {
	asOf := day("2025-06-10")
	before := Compute(days("2025-06-10", "2025-06-08"), asOf)
	assert.Equal(t, 1, before.Current)

	// user backfills the missing day
	after := Compute(days("2025-06-10", "2025-06-09", "2025-06-08"), asOf)
	assert.Equal(t, 3, after.Current)
	assert.Equal(t, 3, after.Longest)
}

func TestComputeNormalizesTimestamps(t *testing.T) {
	asOf := day("2025-06-10")
	loc := time.FixedZone("UTC+8", 8*3600)
	late := time.Date(2025, 6, 9, 23, 55, 0, 0, loc)
	early := time.Date(2025, 6, 10, 0, 5, 0, 0, time.UTC)
	r := Compute([]time.Time{late, early}, asOf)
	assert.Equal(t, 2, r.Current)
}

func TestExtendFastPath(t *testing.T) {
	last := day("2025-06-09")
	r := Result{Current: 4, Longest: 6, LastCheckin: &last}

	next, ok := r.Extend(day("2025-06-10"), day("2025-06-10"))
	require.True(t, ok)
	assert.Equal(t, 5, next.Current)
	assert.Equal(t, 6, next.Longest)
	assert.True(t, next.LastCheckin.Equal(day("2025-06-10")))
}

func TestExtendRaisesLongest(t *testing.T) {
	last := day("2025-06-09")
	r := Result{Current: 6, Longest: 6, LastCheckin: &last}

	next, ok := r.Extend(day("2025-06-10"), day("2025-06-10"))
	require.True(t, ok)
	assert.Equal(t, 7, next.Current)
	assert.Equal(t, 7, next.Longest)
}

func TestExtendRejectsNonAdjacentOrBackfill(t *testing.T) {
	last := day("2025-06-05")
	r := Result{Current: 2, Longest: 2, LastCheckin: &last}

	// gap since the last check-in
	_, ok := r.Extend(day("2025-06-10"), day("2025-06-10"))
	assert.False(t, ok)

	// adjacent but not today: a backfill may have filled an earlier gap
	last2 := day("2025-06-03")
	r2 := Result{Current: 1, Longest: 3, LastCheckin: &last2}
	_, ok = r2.Extend(day("2025-06-04"), day("2025-06-10"))
	assert.False(t, ok)

	// no history at all
	_, ok = Result{}.Extend(day("2025-06-10"), day("2025-06-10"))
	assert.False(t, ok)
}

func TestComputeWeeklyScenario(t *testing.T) {
	// Mon: categories 1,2,3 / Tue: 1,2 / Wed: 1 — evaluated Wednesday
	mon, tue, wed := "2025-06-02", "2025-06-03", "2025-06-04"
	asOf := day(wed)

	cat1 := Compute(days(mon, tue, wed), asOf)
	assert.Equal(t, 3, cat1.Current)
	assert.Equal(t, 3, cat1.Longest)

	cat2 := Compute(days(mon, tue), asOf)
	assert.Equal(t, 2, cat2.Current, "Tuesday is still within the grace window on Wednesday")
	assert.Equal(t, 2, cat2.Longest)

	cat3 := Compute(days(mon), asOf)
	assert.Equal(t, 0, cat3.Current)
	assert.Equal(t, 1, cat3.Longest)
}
