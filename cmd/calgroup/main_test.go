package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgroup/internal/config"
	"calgroup/internal/model"
)

func TestParseDateArg(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2018-03-07", want: time.Date(2018, 3, 7, 0, 0, 0, 0, time.UTC)},
		{in: "2018-03-07T09:30:00Z", want: time.Date(2018, 3, 7, 9, 30, 0, 0, time.UTC)},
		{in: "07/03/2018", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "2018-13-40", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseDateArg(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not a valid date")
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want))
		})
	}
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "January", monthLabel("1"))
	assert.Equal(t, "December", monthLabel("12"))
	assert.Equal(t, "13", monthLabel("13"))
	assert.Equal(t, "2018", monthLabel("2018"))
	assert.Equal(t, "n/a", monthLabel("n/a"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "total-time-spent-per-month", slug("Total Time Spent Per Month"))
	assert.Equal(t, "top-5-events-by-time", slug("Top 5 Events By Time"))
	assert.Equal(t, "invites-sent-per-week", slug("Invites Sent / Per Week"))
}

func TestTableSpecCountsAndTotals(t *testing.T) {
	table := model.Table{Rows: []model.Row{
		{Key: "3", Count: 4, Total: 2.5},
		{Key: "11", Count: 1, Total: 1.0},
	}}
	style := config.ChartStyle{Width: 640, Height: 360, Color: "#336699"}

	spec := tableSpec(table, totals, style, "T", "X", "Y", monthLabel)
	assert.Equal(t, []string{"March", "November"}, spec.X)
	assert.Equal(t, []float64{2.5, 1.0}, spec.Y)
	assert.Equal(t, style.Color, spec.Color)
	assert.Equal(t, style.Width, spec.Width)

	spec = tableSpec(table, counts, style, "T", "X", "Y", nil)
	assert.Equal(t, []string{"3", "11"}, spec.X)
	assert.Equal(t, []float64{4, 1}, spec.Y)
}
