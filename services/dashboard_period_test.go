package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/models"
)

func athens(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)
	return loc
}

func labels(buckets []models.Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label
	}
	return out
}

func TestResolveDateRangeDefaults(t *testing.T) {
	loc := athens(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, loc)

	r := ResolveDateRange(nil, nil, now, loc)
	want := models.DateRange{
		StartDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, loc),
		EndDate:      time.Date(2024, 3, 15, 23, 59, 59, int(999*time.Millisecond), loc),
		DaysInPeriod: 15,
		PrevStart:    time.Date(2024, 2, 15, 0, 0, 0, 0, loc),
		PrevEnd:      time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), loc),
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("ResolveDateRange mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDateRangeExplicitAcrossDST(t *testing.T) {
	loc := athens(t)
	start := time.Date(2024, 3, 25, 15, 30, 0, 0, loc)
	end := time.Date(2024, 4, 5, 8, 0, 0, 0, loc)

	r := ResolveDateRange(&start, &end, time.Now(), loc)
	assert.Equal(t, 12, r.DaysInPeriod)
	assert.True(t, r.StartDate.Equal(time.Date(2024, 3, 25, 0, 0, 0, 0, loc)))
	assert.True(t, r.EndDate.Equal(time.Date(2024, 4, 6, 0, 0, 0, 0, loc).Add(-time.Millisecond)))
	assert.True(t, r.PrevEnd.Before(r.StartDate))
	assert.True(t, r.PrevStart.Equal(time.Date(2024, 3, 13, 0, 0, 0, 0, loc)))
}

func TestBuildBucketsDaily(t *testing.T) {
	loc := athens(t)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 3, 0, 0, 0, 0, loc)

	got := BuildBuckets(ResolveDateRange(&start, &end, time.Now(), loc))
	want := []models.Bucket{
		{Label: "01 Mar", Start: start, End: start.AddDate(0, 0, 1)},
		{Label: "02 Mar", Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 2)},
		{Label: "03 Mar", Start: start.AddDate(0, 0, 2), End: start.AddDate(0, 0, 3)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("daily buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBucketsWeeklyClampsLastWeek(t *testing.T) {
	loc := athens(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 2, 15, 0, 0, 0, 0, loc)

	got := BuildBuckets(ResolveDateRange(&start, &end, time.Now(), loc))
	want := []string{
		"01 Jan - 07 Jan",
		"08 Jan - 14 Jan",
		"15 Jan - 21 Jan",
		"22 Jan - 28 Jan",
		"29 Jan - 04 Feb",
		"05 Feb - 11 Feb",
		"12 Feb - 15 Feb",
	}
	if diff := cmp.Diff(want, labels(got)); diff != "" {
		t.Errorf("weekly labels mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[len(got)-1].End.Equal(time.Date(2024, 2, 16, 0, 0, 0, 0, loc)))
}

func TestBuildBucketsMonthly(t *testing.T) {
	loc := athens(t)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, loc)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, loc)

	got := BuildBuckets(ResolveDateRange(&start, &end, time.Now(), loc))
	want := []string{"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024"}
	if diff := cmp.Diff(want, labels(got)); diff != "" {
		t.Errorf("monthly labels mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[5].End.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, loc)))
}

func TestMonthBuckets(t *testing.T) {
	loc := athens(t)
	got := MonthBuckets(time.Date(2024, 2, 10, 0, 0, 0, 0, loc), loc, 3)
	if diff := cmp.Diff([]string{"Dec 2023", "Jan 2024", "Feb 2024"}, labels(got)); diff != "" {
		t.Errorf("month labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldPoints(t *testing.T) {
	loc := athens(t)
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, loc) }
	start, end := day(1, 0), day(3, 0)
	buckets := BuildBuckets(ResolveDateRange(&start, &end, time.Now(), loc))

	points := []models.TimePoint{
		{At: day(1, 0), Value: 10.1},
		{At: day(1, 23), Value: 5},
		{At: day(2, 12), Value: 7, Cancelled: true},
		{At: day(3, 9), Value: 2.5},
		{At: day(4, 0), Value: 100},
		{At: time.Date(2024, 2, 29, 23, 0, 0, 0, loc), Value: 100},
	}

	got := FoldPoints(buckets, points, true)
	want := []models.Labeled{
		{Label: "01 Mar", Value: 15.1},
		{Label: "02 Mar", Value: 0},
		{Label: "03 Mar", Value: 2.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FoldPoints mismatch (-want +got):\n%s", diff)
	}

	withCancelled := FoldPoints(buckets, points, false)
	assert.InDelta(t, 7, withCancelled[1].Value, 0.001)
}

func TestGrowth(t *testing.T) {
	assert.Zero(t, growth(10, 0))
	assert.InDelta(t, 50, growth(15, 10), 0.001)
	assert.InDelta(t, -33.33, growth(10, 15), 0.001)
}

func TestNewestFirst(t *testing.T) {
	got := newestFirst([]models.Labeled{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	assert.Equal(t, "c", got[0].Label)
	assert.Equal(t, "a", got[2].Label)
}

func TestResolveDateRangeStartAfterEnd(t *testing.T) {
	loc := athens(t)
	start := time.Date(2026, 3, 20, 0, 0, 0, 0, loc)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	r := ResolveDateRange(&start, &end, time.Now(), loc)
	assert.Equal(t, 1, r.DaysInPeriod)
	assert.True(t, r.StartDate.Equal(end))
	assert.True(t, r.PrevEnd.Before(r.StartDate))
	assert.True(t, r.PrevStart.Before(r.PrevEnd))
	assert.Len(t, BuildBuckets(r), 1)

	// Only an end before the default month start.
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, loc)
	early := time.Date(2026, 2, 20, 0, 0, 0, 0, loc)
	r = ResolveDateRange(nil, &early, now, loc)
	assert.Equal(t, 1, r.DaysInPeriod)
	assert.True(t, r.StartDate.Equal(early))
}
