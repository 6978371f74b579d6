// Package expiry derives effective expiry dates and their day-based status.
// Everything here is a pure function of its arguments.
package expiry

import (
	"time"

	"github.com/erazemk/shramba/internal/model"
)

// DefaultThresholdDays is how many days ahead an expiry counts as "soon".
const DefaultThresholdDays = 30

// Status classifies an item by how close it is to its effective expiry.
type Status string

// Statuses.
const (
	StatusExpired Status = "expired"
	StatusSoon    Status = "soon"
	StatusOK      Status = "ok"
	StatusNone    Status = "none"
)

// AddMonths adds n calendar months to d. The day of month is kept unless the
// target month is shorter, in which case it clamps to the month's last day.
func AddMonths(d model.Date, n int) model.Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day
	if day > last {
		day = last
	}
	return model.NewDate(first.Year(), first.Month(), day)
}

// OpenedExpiry returns the date an opened product goes off, if both the opened
// date and shelf life are known.
func OpenedExpiry(item model.Item) (model.Date, bool) {
	if item.Opened == nil || item.Opened.Date.IsZero() || item.Opened.ShelfLifeMonths <= 0 {
		return model.Date{}, false
	}
	return AddMonths(item.Opened.Date, item.Opened.ShelfLifeMonths), true
}

// Effective returns the earliest of the printed expiry and the opened-derived
// expiry. ok is false when neither exists.
func Effective(item model.Item) (date model.Date, ok bool) {
	if !item.Expiry.IsZero() {
		date, ok = item.Expiry, true
	}
	if opened, has := OpenedExpiry(item); has {
		if !ok || opened.Before(date) {
			date, ok = opened, true
		}
	}
	return date, ok
}

// DaysUntil returns the number of whole days from the calendar day of now to d.
// Tomorrow is 1, today is 0, negative values are already past.
func DaysUntil(now time.Time, d model.Date) int {
	const day = 24 * 60 * 60
	today := model.DateOf(now).In(time.UTC)
	return int(d.In(time.UTC).Unix()/day - today.Unix()/day)
}

// Classify maps a day count to a status using the given "soon" threshold.
func Classify(days, thresholdDays int) Status {
	switch {
	case days < 0:
		return StatusExpired
	case days <= thresholdDays:
		return StatusSoon
	default:
		return StatusOK
	}
}

// StatusOf classifies an item as of now. Items without an effective expiry
// are StatusNone and days is 0.
func StatusOf(item model.Item, now time.Time, thresholdDays int) (status Status, days int) {
	date, ok := Effective(item)
	if !ok {
		return StatusNone, 0
	}
	days = DaysUntil(now, date)
	return Classify(days, thresholdDays), days
}
