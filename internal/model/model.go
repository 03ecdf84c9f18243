package model

import "time"

// RawEvent is one calendar entry exactly as parsed from the export file.
// Values are never mutated after construction; the normalizer derives a
// NormalizedRecord from it and leaves the RawEvent alone.
type RawEvent struct {
	Start  time.Time
	End    time.Time
	Name   string
	AllDay bool
}

// NormalizedRecord is the flat, aggregation-ready form of a RawEvent.
// EventName may have been rewritten by a grouping rule; the date/hour
// fields come from the event's start time.
type NormalizedRecord struct {
	Day       int
	Month     int
	Year      int
	Hour      int
	EventName string

	// DurationSeconds is end minus start. Malformed inputs with end before
	// start produce a negative value which is kept as-is; the standard
	// duration filter drops it later.
	DurationSeconds float64
}

// Minutes returns the record duration in minutes.
func (r NormalizedRecord) Minutes() float64 { return r.DurationSeconds / 60 }

// Hours returns the record duration in hours.
func (r NormalizedRecord) Hours() float64 { return r.DurationSeconds / 3600 }

// Unit selects how aggregated durations are reported.
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
)

// Row is one group in an aggregated table.
type Row struct {
	// Key is the group key rendered as a string: the event name, or the
	// month number "1".."12", or the four-digit year.
	Key string
	// Count is the number of records in the group.
	Count int
	// Total is the summed duration in the table's Unit.
	Total float64
}

// Table is the result of grouping normalized records by one key.
type Table struct {
	Unit Unit
	Rows []Row
}

// ChartSpec describes a single bar chart. It is a value object consumed by
// the renderer and never mutated after construction; size and color are
// parameters, not constants.
type ChartSpec struct {
	Title  string
	XLabel string
	YLabel string

	// X holds the bar labels and Y the bar values; they must be the same
	// non-zero length for the spec to be renderable.
	X []string
	Y []float64

	// Width and Height are the output dimensions in pixels.
	Width  int
	Height int

	// Color is the bar fill, e.g. "#db3236".
	Color string
}

// Chart is a rendered chart: the spec it was built from plus the SVG
// document. Charts live only in memory; writing them anywhere is the
// caller's business.
type Chart struct {
	Spec ChartSpec
	SVG  []byte
}
