package clinic

import (
	"time"

	"github.com/shopspring/decimal"
)

// FilterByDateRange returns the visits whose timestamp falls within
// [start of from's day, 23:59:59 of to's day]. With both bounds zero the
// input is returned unchanged. Visits without a timestamp are excluded
// while a range is active and included otherwise.
func FilterByDateRange(visits []Visit, from, to time.Time) []Visit {
	if from.IsZero() && to.IsZero() {
		return visits
	}

	start := startOfDay(from)
	end := endOfDay(to)
	out := make([]Visit, 0, len(visits))
	for _, v := range visits {
		if v.VisitAt == nil {
			continue
		}
		if v.VisitAt.Before(start) || v.VisitAt.After(end) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Bucket is one summary window: how many visits landed in it and the
// income they produced.
type Bucket struct {
	Count  int             `json:"count"`
	Income decimal.Decimal `json:"income"`
}

// Summary is the dashboard triple: today, this week, all time.
type Summary struct {
	Today   Bucket `json:"today"`
	Week    Bucket `json:"week"`
	AllTime Bucket `json:"all_time"`
}

// Summarize aggregates visits relative to now. The week starts Monday
// 00:00. A visit with an unparseable price still counts toward Count but
// adds nothing to Income; a visit without a timestamp counts only toward
// the all-time bucket.
func Summarize(visits []Visit, now time.Time) Summary {
	dayStart := startOfDay(now)
	weekStart := startOfWeek(now)

	var sum Summary
	sum.Today.Income = decimal.Zero
	sum.Week.Income = decimal.Zero
	sum.AllTime.Income = decimal.Zero

	for _, v := range visits {
		price := ParsePrice(v.Price)

		sum.AllTime.Count++
		sum.AllTime.Income = sum.AllTime.Income.Add(price)

		if v.VisitAt == nil {
			continue
		}
		if !v.VisitAt.Before(weekStart) {
			sum.Week.Count++
			sum.Week.Income = sum.Week.Income.Add(price)
		}
		if !v.VisitAt.Before(dayStart) {
			sum.Today.Count++
			sum.Today.Income = sum.Today.Income.Add(price)
		}
	}
	return sum
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	// time.Weekday counts Sunday as 0; shift to a Monday start.
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}
