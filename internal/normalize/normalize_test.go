package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgroup/internal/config"
	"calgroup/internal/model"
)

func TestCompileRejectsBadPattern(t *testing.T) {
	_, err := Compile([]config.GroupingRule{{Pattern: "(", Replacement: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grouping rule")
}

func TestApplyAnchoredFullMatch(t *testing.T) {
	rules, err := Compile([]config.GroupingRule{
		{Pattern: "Standup.*", Replacement: "Standup"},
	})
	require.NoError(t, err)

	// The pattern must cover the whole name, not a substring.
	assert.Equal(t, "Standup", rules.Apply("Standup (weekly)"))
	assert.Equal(t, "Team Standup", rules.Apply("Team Standup"))
}

func TestApplyFirstMatchWins(t *testing.T) {
	rules, err := Compile([]config.GroupingRule{
		{Pattern: "1:1.*", Replacement: "One on ones"},
		{Pattern: "1:1 with Sam", Replacement: "Sam"},
	})
	require.NoError(t, err)

	assert.Equal(t, "One on ones", rules.Apply("1:1 with Sam"))
}

func TestApplyNoMatchKeepsName(t *testing.T) {
	rules, err := Compile([]config.GroupingRule{
		{Pattern: "Standup", Replacement: "Standup"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Dentist", rules.Apply("Dentist"))
}

func TestApplyDeterministic(t *testing.T) {
	rules, err := Compile([]config.GroupingRule{
		{Pattern: "Interview.*", Replacement: "Interviews"},
	})
	require.NoError(t, err)

	first := rules.Apply("Interview: backend")
	second := rules.Apply("Interview: backend")
	assert.Equal(t, first, second)
}

func TestRecordFields(t *testing.T) {
	start := time.Date(2018, 3, 7, 14, 30, 0, 0, time.UTC)
	ev := model.RawEvent{
		Start: start,
		End:   start.Add(45 * time.Minute),
		Name:  "Standup",
	}

	rec := Record(ev, nil)

	assert.Equal(t, 7, rec.Day)
	assert.Equal(t, 3, rec.Month)
	assert.Equal(t, 2018, rec.Year)
	assert.Equal(t, 14, rec.Hour)
	assert.Equal(t, "Standup", rec.EventName)
	assert.Equal(t, float64(45*60), rec.DurationSeconds)
}

func TestRecordNegativeDurationPassesThrough(t *testing.T) {
	start := time.Date(2018, 3, 7, 14, 0, 0, 0, time.UTC)
	ev := model.RawEvent{
		Start: start,
		End:   start.Add(-time.Hour),
		Name:  "Broken",
	}

	rec := Record(ev, nil)
	assert.Equal(t, -3600.0, rec.DurationSeconds)
}

func TestDurationConversionsExact(t *testing.T) {
	rec := model.NormalizedRecord{DurationSeconds: 5400}
	assert.Equal(t, 5400.0/60, rec.Minutes())
	assert.Equal(t, 5400.0/3600, rec.Hours())
	assert.Equal(t, 90.0, rec.Minutes())
	assert.Equal(t, 1.5, rec.Hours())
}

func TestRecordsOnePerEvent(t *testing.T) {
	start := time.Date(2018, 1, 1, 9, 0, 0, 0, time.UTC)
	events := []model.RawEvent{
		{Start: start, End: start.Add(time.Hour), Name: "a"},
		{Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 1).Add(time.Hour), Name: "b"},
		{Start: start.AddDate(0, 1, 0), End: start.AddDate(0, 1, 0).Add(time.Hour), Name: "c"},
	}

	recs := Records(events, nil)
	require.Len(t, recs, len(events))
	for i, r := range recs {
		assert.Equal(t, events[i].Name, r.EventName)
	}
}
