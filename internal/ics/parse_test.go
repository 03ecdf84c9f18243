package ics

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeICS writes lines as a CRLF-terminated ICS file and returns its path.
func writeICS(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.ics")
	body := strings.Join(lines, "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func sampleCalendar(t *testing.T) string {
	return writeICS(t,
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calgroup tests//EN",
		"BEGIN:VEVENT",
		"UID:standup-1@test",
		"DTSTART:20180307T100000Z",
		"DTEND:20180307T103000Z",
		"SUMMARY:Standup",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:dentist@test",
		"DTSTART:20180308T150000Z",
		"DTEND:20180308T160000Z",
		"SUMMARY:Dentist",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:holiday@test",
		"DTSTART;VALUE=DATE:20180310",
		"DTEND;VALUE=DATE:20180311",
		"SUMMARY:Holiday",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func TestParseFileOneRecordPerEvent(t *testing.T) {
	events, err := ParseFile(sampleCalendar(t))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Standup", events[0].Name)
	assert.Equal(t, time.Date(2018, 3, 7, 10, 0, 0, 0, time.UTC), events[0].Start.UTC())
	assert.Equal(t, 30*time.Minute, events[0].End.Sub(events[0].Start))
	assert.False(t, events[0].AllDay)
}

func TestParseFileDetectsAllDay(t *testing.T) {
	events, err := ParseFile(sampleCalendar(t))
	require.NoError(t, err)

	assert.True(t, events[2].AllDay)
	assert.Equal(t, "Holiday", events[2].Name)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.ics"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ics")
	require.NoError(t, os.WriteFile(path, []byte("this is not a calendar\n"), 0o600))

	_, err := ParseFile(path)
	require.Error(t, err)

	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ics")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := ParseFile(path)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseFileKeepsRawRRule(t *testing.T) {
	path := writeICS(t,
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calgroup tests//EN",
		"BEGIN:VEVENT",
		"UID:weekly@test",
		"DTSTART:20180305T090000Z",
		"DTEND:20180305T091500Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"SUMMARY:Weekly sync",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", events[0].RawRRule)
}

func TestFlattenAllDayExcludedByDefault(t *testing.T) {
	events, err := ParseFile(sampleCalendar(t))
	require.NoError(t, err)

	raw := Flatten(events, FlattenOptions{})
	require.Len(t, raw, 2)

	raw = Flatten(events, FlattenOptions{IncludeAllDay: true})
	require.Len(t, raw, 3)
}

func TestFlattenDateWindow(t *testing.T) {
	events, err := ParseFile(sampleCalendar(t))
	require.NoError(t, err)

	raw := Flatten(events, FlattenOptions{
		From: time.Date(2018, 3, 8, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2018, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	require.Len(t, raw, 1)
	assert.Equal(t, "Dentist", raw[0].Name)
}
