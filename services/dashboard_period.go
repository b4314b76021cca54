package services

import (
	"sort"
	"time"

	"github.com/dixis/dixis/models"
)

const (
	dailyBucketMaxDays  = 31
	weeklyBucketMaxDays = 92
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// calendarDays counts midnights between two dates, ignoring DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ResolveDateRange applies the dashboard defaults: the period starts on the
// first of the current month and ends now, both in loc. The end is always
// extended to the last instant of its day. A start past the end is pulled
// back to the end day, so the period always covers at least one day.
func ResolveDateRange(start, end *time.Time, now time.Time, loc *time.Location) models.DateRange {
	now = now.In(loc)

	s := startOfMonth(now)
	if start != nil {
		s = startOfDay(start.In(loc))
	}
	e := now
	if end != nil {
		e = end.In(loc)
	}
	e = startOfDay(e).AddDate(0, 0, 1).Add(-time.Millisecond)
	if s.After(e) {
		s = startOfDay(e)
	}

	days := calendarDays(s, e) + 1
	return models.DateRange{
		StartDate:    s,
		EndDate:      e,
		DaysInPeriod: days,
		PrevStart:    s.AddDate(0, 0, -days),
		PrevEnd:      s.Add(-time.Millisecond),
	}
}

// rangeEnd is the exclusive upper bound of r.
func rangeEnd(r models.DateRange) time.Time {
	return startOfDay(r.EndDate).AddDate(0, 0, 1)
}

// BuildBuckets slices r into daily buckets up to 31 days, 7-day buckets
// anchored at the start date up to 92 days, and calendar months beyond
// that. The final bucket is clamped to the end of the range.
func BuildBuckets(r models.DateRange) []models.Bucket {
	end := rangeEnd(r)
	var out []models.Bucket

	switch {
	case r.DaysInPeriod <= dailyBucketMaxDays:
		for day := r.StartDate; day.Before(end); day = day.AddDate(0, 0, 1) {
			out = append(out, models.Bucket{
				Label: day.Format("02 Jan"),
				Start: day,
				End:   day.AddDate(0, 0, 1),
			})
		}

	case r.DaysInPeriod <= weeklyBucketMaxDays:
		for week := r.StartDate; week.Before(end); week = week.AddDate(0, 0, 7) {
			next := week.AddDate(0, 0, 7)
			if next.After(end) {
				next = end
			}
			last := next.AddDate(0, 0, -1)
			out = append(out, models.Bucket{
				Label: week.Format("02 Jan") + " - " + last.Format("02 Jan"),
				Start: week,
				End:   next,
			})
		}

	default:
		for month := startOfMonth(r.StartDate); month.Before(end); month = month.AddDate(0, 1, 0) {
			next := month.AddDate(0, 1, 0)
			if next.After(end) {
				next = end
			}
			out = append(out, models.Bucket{
				Label: month.Format("Jan 2006"),
				Start: month,
				End:   next,
			})
		}
	}
	return out
}

// MonthBuckets returns n calendar months ending with the month of now,
// oldest first.
func MonthBuckets(now time.Time, loc *time.Location, n int) []models.Bucket {
	first := startOfMonth(now.In(loc)).AddDate(0, -(n - 1), 0)
	out := make([]models.Bucket, 0, n)
	for i := 0; i < n; i++ {
		start := first.AddDate(0, i, 0)
		out = append(out, models.Bucket{
			Label: start.Format("Jan 2006"),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return out
}

// FoldPoints sums point values into contiguous ascending buckets. With
// skipCancelled, cancelled points are ignored.
func FoldPoints(buckets []models.Bucket, points []models.TimePoint, skipCancelled bool) []models.Labeled {
	out := make([]models.Labeled, len(buckets))
	for i, b := range buckets {
		out[i].Label = b.Label
	}
	for _, p := range points {
		if skipCancelled && p.Cancelled {
			continue
		}
		i := sort.Search(len(buckets), func(i int) bool { return buckets[i].End.After(p.At) })
		if i < len(buckets) && !p.At.Before(buckets[i].Start) {
			out[i].Value += p.Value
		}
	}
	for i := range out {
		out[i].Value = roundCents(out[i].Value)
	}
	return out
}

// newestFirst reverses a series in place and returns it.
func newestFirst(series []models.Labeled) []models.Labeled {
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series
}

// growth is the percent change from base to cur, 0 when base is 0.
func growth(cur, base float64) float64 {
	if base == 0 {
		return 0
	}
	return roundCents((cur - base) / base * 100)
}
