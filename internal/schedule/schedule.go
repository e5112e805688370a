package schedule

import (
	"strconv"
	"strings"
	"time"

	"slotbook/internal/models"
)

// dayCodes maps time.Weekday to the three-letter lowercase codes stored in
// availability templates.
var dayCodes = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// DayCode returns the weekday code for t.
func DayCode(t time.Time) string {
	return dayCodes[t.Weekday()]
}

// IsDayCode reports whether code is one of mon..sun.
func IsDayCode(code string) bool {
	for _, c := range dayCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Generator turns a seller's weekly availability template into concrete
// bookable slots for a calendar date. It is pure: no state, no caching,
// safe for concurrent use.
type Generator struct {
	loc  *time.Location
	step time.Duration
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc, step: models.SlotDuration}
}

func (g *Generator) Location() *time.Location {
	return g.loc
}

// Slots generates the ordered bookable slots for date.
//
// A nil template, an inactive weekday, an unparsable working window or a
// window shorter than one slot all yield an empty result; "not configured"
// is indistinguishable from "no availability". Candidates whose end is not
// strictly after now are dropped, so the result is always presentable
// as-is. Weekday derivation and slot construction both use the generator's
// reference zone.
func (g *Generator) Slots(avail *models.Availability, date time.Time, now time.Time) []models.TimeSlot {
	if avail == nil {
		return nil
	}

	day := date.In(g.loc)
	if !avail.Days[DayCode(day)] {
		return nil
	}

	startHour, startMin, ok := ParseClock(avail.StartTime)
	if !ok {
		return nil
	}
	endHour, endMin, ok := ParseClock(avail.EndTime)
	if !ok {
		return nil
	}

	windowStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, g.loc)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, g.loc)

	var slots []models.TimeSlot
	for cur := windowStart; !cur.Add(g.step).After(windowEnd); cur = cur.Add(g.step) {
		end := cur.Add(g.step)
		if end.After(now) {
			slots = append(slots, models.TimeSlot{Start: cur, End: end})
		}
	}
	return slots
}

// ParseClock parses a 24-hour "HH:MM" wall-clock value.
func ParseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
