package ics

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calgroup/internal/log"
	"calgroup/internal/model"
)

// ParsedEvent is one VEVENT as read from the export file, before any
// recurrence expansion or all-day filtering.
type ParsedEvent struct {
	Name string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time
}

// ParseError reports a calendar file that could not be parsed as iCalendar.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse calendar %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile opens an ICS export and parses it into a list of ParsedEvent.
//
//   - A missing or unreadable file surfaces the wrapped OS error.
//   - Invalid calendar syntax yields a *ParseError.
//   - Individual VEVENTs that cannot be read are logged and skipped; the
//     rest of the file still parses.
func ParseFile(path string) ([]ParsedEvent, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("empty calendar body")}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "path", path)
		return nil, &ParseError{Path: path, Err: err}
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "path", path)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "path", path, "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Name = p.Value
	}

	// DTSTART / DTEND via the library's timezone-aware helpers.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %q: no usable DTSTART: %w", out.Name, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional in the wild; a missing end means a
		// zero-duration event at start.
		end = start
	}
	out.Start = start
	out.End = end

	// All-day detection: VALUE=DATE parameter or a date-only DTSTART value.
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	// RRULE kept raw; expansion lives in expand.go.
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE may appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// FlattenOptions control the ParsedEvent → RawEvent pass.
type FlattenOptions struct {
	// IncludeAllDay keeps all-day events; by default they are dropped.
	IncludeAllDay bool

	// From / To, when non-zero, keep only events whose start falls inside
	// the window (From inclusive, To exclusive).
	From time.Time
	To   time.Time
}

// Flatten maps parsed events 1:1 onto RawEvents, applying the all-day and
// date-window options. Recurring events contribute their base entry only;
// use Expand for occurrence-level output.
func Flatten(events []ParsedEvent, opts FlattenOptions) []model.RawEvent {
	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		if ev.AllDay && !opts.IncludeAllDay {
			continue
		}
		if !inWindow(ev.Start, opts.From, opts.To) {
			continue
		}
		out = append(out, model.RawEvent{
			Start:  ev.Start,
			End:    ev.End,
			Name:   ev.Name,
			AllDay: ev.AllDay,
		})
	}
	return out
}

func inWindow(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// parseICSTime parses a basic ICS date/date-time string (EXDATE values).
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	// Date-only (all-day), e.g., 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
