package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calgroup/internal/log"
	"calgroup/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandOptions control recurrence expansion.
type ExpandOptions struct {
	// From / To bound the occurrence window (inclusive). Both are required:
	// an unbounded expansion of an open-ended RRULE never terminates.
	From time.Time
	To   time.Time

	// IncludeAllDay keeps all-day events and their occurrences.
	IncludeAllDay bool

	// MaxPerEvent caps occurrences per recurring event. Zero means the
	// package default.
	MaxPerEvent int
}

// Expand turns parsed events into concrete RawEvents inside the window,
// expanding RRULE-based recurrence and honoring EXDATE. Non-recurring
// events pass through when their start is in the window. Events that blow
// the per-event cap are truncated and logged, not failed.
func Expand(events []ParsedEvent, opts ExpandOptions) ([]model.RawEvent, error) {
	if opts.From.IsZero() || opts.To.IsZero() {
		return nil, errors.New("expand: a -from/-to window is required")
	}
	if opts.To.Before(opts.From) {
		return nil, errors.New("expand: window end is before window start")
	}
	if opts.MaxPerEvent <= 0 {
		opts.MaxPerEvent = defaultMaxOccurrencesPerEvent
	}

	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		if ev.AllDay && !opts.IncludeAllDay {
			continue
		}
		if ev.RawRRule == "" {
			if inWindow(ev.Start, opts.From, opts.To) {
				out = append(out, model.RawEvent{
					Start:  ev.Start,
					End:    ev.End,
					Name:   ev.Name,
					AllDay: ev.AllDay,
				})
			}
			continue
		}
		out = append(out, expandRecurring(ev, opts)...)
	}
	return out, nil
}

func expandRecurring(ev ParsedEvent, opts ExpandOptions) []model.RawEvent {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "name", ev.Name, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Query in the event's own location so DST boundaries line up.
	from := opts.From.In(ev.Start.Location())
	to := opts.To.In(ev.Start.Location())

	occTimes := set.Between(from, to, true)
	if len(occTimes) > opts.MaxPerEvent {
		occTimes = occTimes[:opts.MaxPerEvent]
		appLog.Warn("expand: occurrences truncated at cap",
			"name", ev.Name, "cap", opts.MaxPerEvent)
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]model.RawEvent, 0, len(occTimes))
	for _, start := range occTimes {
		end := start.Add(dur)
		if ev.AllDay {
			// All-day occurrence: [date 00:00, next day 00:00).
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			start, end = day, day.Add(24*time.Hour)
		}
		out = append(out, model.RawEvent{
			Start:  start,
			End:    end,
			Name:   ev.Name,
			AllDay: ev.AllDay,
		})
	}
	return out
}
