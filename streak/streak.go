// Package streak computes consecutive-day check-in streaks. It is a pure
// function over calendar days with no storage dependency, so the one tricky
// algorithm in the engine can be unit tested without a database.
package streak

import (
	"sort"
	"time"
)

// Result is the outcome of a streak computation for one (user, category) pair.
type Result struct {
	Current     int
	Longest     int
	LastCheckin *time.Time
}

// Day normalizes t to midnight UTC of its calendar date in its own location.
// All streak arithmetic happens on these normalized values.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute derives current and longest consecutive-day runs from check-in days.
// Input order does not matter and duplicates are tolerated. The current streak
// is the run ending at the most recent day, but only counts as alive when that
// day is asOf or the day before; older runs still feed the longest streak.
func Compute(days []time.Time, asOf time.Time) Result {
	if len(days) == 0 {
		return Result{}
	}

	norm := make([]time.Time, 0, len(days))
	for _, d := range days {
		norm = append(norm, Day(d))
	}
	sort.Slice(norm, func(i, j int) bool { return norm[i].After(norm[j]) })

	// drop duplicate days after sorting
	uniq := norm[:1]
	for _, d := range norm[1:] {
		if !d.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, d)
		}
	}

	latest := uniq[0]
	run := 1
	latestRun := 0
	longest := 0
	for i := 1; i < len(uniq); i++ {
		if uniq[i-1].AddDate(0, 0, -1).Equal(uniq[i]) {
			run++
			continue
		}
		if latestRun == 0 {
			latestRun = run
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if latestRun == 0 {
		latestRun = run
	}
	if run > longest {
		longest = run
	}

	current := 0
	if alive(latest, Day(asOf)) {
		current = latestRun
	}

	return Result{Current: current, Longest: longest, LastCheckin: &latest}
}

// Extend applies the incremental fast path: when day is exactly one after the
// last recorded check-in and lands on asOf itself, the current run grows by
// one without rescanning history. Any other shape (backfill, gap, repeat)
// reports false and the caller must fall back to a full Compute.
func (r Result) Extend(day, asOf time.Time) (Result, bool) {
	if r.LastCheckin == nil || r.Current <= 0 {
		return r, false
	}
	d := Day(day)
	if !r.LastCheckin.AddDate(0, 0, 1).Equal(d) || !d.Equal(Day(asOf)) {
		return r, false
	}
	next := Result{
		Current:     r.Current + 1,
		Longest:     r.Longest,
		LastCheckin: &d,
	}
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next, true
}

// alive reports whether a streak ending on last still counts as current:
// the grace window is "today or yesterday" relative to asOf.
func alive(last, asOf time.Time) bool {
	return last.Equal(asOf) || last.AddDate(0, 0, 1).Equal(asOf)
}
