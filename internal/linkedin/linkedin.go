// Package linkedin ingests LinkedIn data-export CSVs: the invitations
// export (sent/received invites with timestamps) and the connections
// export (contacts with a free-text Position column).
package linkedin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	appLog "calgroup/internal/log"
	"calgroup/internal/model"
)

// Directions as they appear in the invitations export.
const (
	DirectionOutgoing = "OUTGOING"
	DirectionIncoming = "INCOMING"
)

// Invitation is one row of the invitations export.
type Invitation struct {
	SentAt    time.Time
	Direction string
}

// Connection is one row of the connections export.
type Connection struct {
	ConnectedOn time.Time
	Position    string
}

// recruiterWords are the position keywords canonicalized to "Recruiter".
var recruiterWords = []string{"Recruiter", "Talent", "Sourcer", "Recruiting"}

// dateLayouts are the timestamp formats seen across LinkedIn exports.
var dateLayouts = []string{
	"1/2/06, 3:04 PM",
	"1/2/2006, 3:04 PM",
	"01 Jan 2006",
	"2006-01-02",
	"1/2/2006",
}

// ReadInvitations reads the invitations CSV. The file must have a header
// row with a timestamp column ("Sent At" or "Date") and a "Direction"
// column; rows with an unparseable date or blank direction are skipped.
func ReadInvitations(path string) ([]Invitation, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	dateCol, ok := findColumn(header, "Sent At", "Date")
	if !ok {
		return nil, fmt.Errorf("parse invitations %s: no timestamp column", path)
	}
	dirCol, ok := findColumn(header, "Direction")
	if !ok {
		return nil, fmt.Errorf("parse invitations %s: no Direction column", path)
	}

	out := make([]Invitation, 0, len(rows))
	for i, row := range rows {
		direction := strings.ToUpper(strings.TrimSpace(field(row, dirCol)))
		if direction == "" {
			continue
		}
		t, err := parseDate(field(row, dateCol))
		if err != nil {
			appLog.Debug("invitations: skipping row with bad date",
				"path", path, "row", i+2, "value", field(row, dateCol))
			continue
		}
		out = append(out, Invitation{SentAt: t, Direction: direction})
	}

	appLog.Info("invitations read", "path", path, "count", len(out))
	return out, nil
}

// SplitDirection partitions invitations into sent (OUTGOING) and received
// (INCOMING). Rows with any other direction value are dropped.
func SplitDirection(invs []Invitation) (sent, received []Invitation) {
	for _, inv := range invs {
		switch inv.Direction {
		case DirectionOutgoing:
			sent = append(sent, inv)
		case DirectionIncoming:
			received = append(received, inv)
		}
	}
	return sent, received
}

// ReadConnections reads the connections CSV. The header must carry a
// "Connected On" date column and a "Position" column; rows without a
// parseable date are skipped, rows without a position are kept with an
// empty Position.
func ReadConnections(path string) ([]Connection, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	dateCol, ok := findColumn(header, "Connected On", "Date")
	if !ok {
		return nil, fmt.Errorf("parse connections %s: no Connected On column", path)
	}
	posCol, ok := findColumn(header, "Position")
	if !ok {
		return nil, fmt.Errorf("parse connections %s: no Position column", path)
	}

	out := make([]Connection, 0, len(rows))
	for i, row := range rows {
		t, err := parseDate(field(row, dateCol))
		if err != nil {
			appLog.Debug("connections: skipping row with bad date",
				"path", path, "row", i+2, "value", field(row, dateCol))
			continue
		}
		out = append(out, Connection{
			ConnectedOn: t,
			Position:    CanonicalPosition(field(row, posCol)),
		})
	}

	appLog.Info("connections read", "path", path, "count", len(out))
	return out, nil
}

// CanonicalPosition folds recruiting-flavored job titles ("Senior Talent
// Sourcer", "Technical Recruiter", ...) into the single label "Recruiter";
// every other title passes through unchanged.
func CanonicalPosition(position string) string {
	position = strings.TrimSpace(position)
	for _, w := range recruiterWords {
		if strings.Contains(position, w) {
			return "Recruiter"
		}
	}
	return position
}

// Recruiters returns those connections whose canonical position is
// "Recruiter".
func Recruiters(conns []Connection) []Connection {
	out := make([]Connection, 0)
	for _, c := range conns {
		if c.Position == "Recruiter" {
			out = append(out, c)
		}
	}
	return out
}

// ByWeek counts timestamps per calendar week. Keys are the Monday of each
// week formatted as 2006-01-02, and rows come back in week order.
func ByWeek(times []time.Time) model.Table {
	counts := make(map[string]int)
	for _, t := range times {
		counts[weekStart(t).Format("2006-01-02")]++
	}

	// Week-start keys are zero-padded dates, so lexical order is
	// chronological order.
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]model.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, model.Row{Key: k, Count: counts[k]})
	}
	return model.Table{Rows: rows}
}

// SentAtTimes projects invitations onto their timestamps.
func SentAtTimes(invs []Invitation) []time.Time {
	out := make([]time.Time, 0, len(invs))
	for _, inv := range invs {
		out = append(out, inv.SentAt)
	}
	return out
}

func weekStart(t time.Time) time.Time {
	// Monday-based week.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

func readCSV(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read export %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("parse export %s: %w", path, errors.New("empty file"))
	}

	// LinkedIn prepends a notes paragraph to some exports; the header is
	// the first row with more than one field.
	start := 0
	for start < len(all) && len(all[start]) < 2 {
		start++
	}
	if start == len(all) {
		return nil, nil, fmt.Errorf("parse export %s: %w", path, errors.New("no header row"))
	}

	return all[start+1:], all[start], nil
}

func findColumn(header []string, names ...string) (int, bool) {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i, true
			}
		}
	}
	return 0, false
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Epoch seconds show up in some older exports.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
