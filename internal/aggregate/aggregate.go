package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"calgroup/internal/config"
	"calgroup/internal/model"
)

// FilterSpec is the compiled pre-aggregation filter: an optional name
// exclusion plus duration bounds.
type FilterSpec struct {
	excludeName *regexp.Regexp
	maxHours    float64
}

// CompileFilter builds a FilterSpec from configuration. The exclusion
// pattern matches anywhere in the name, case-insensitively, so the default
// "birthday" drops "Dad's birthday" too.
func CompileFilter(cfg config.FilterConfig) (FilterSpec, error) {
	spec := FilterSpec{maxHours: cfg.MaxHours}
	if spec.maxHours <= 0 {
		spec.maxHours = 24
	}
	if cfg.ExcludeName != "" {
		re, err := regexp.Compile(`(?i)` + cfg.ExcludeName)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("exclusion pattern %q: %w", cfg.ExcludeName, err)
		}
		spec.excludeName = re
	}
	return spec, nil
}

// Filter drops records excluded by name and records whose duration is
// non-positive or at least maxHours. The input slice is not modified.
func Filter(records []model.NormalizedRecord, spec FilterSpec) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if spec.excludeName != nil && spec.excludeName.MatchString(r.EventName) {
			continue
		}
		if r.DurationSeconds <= 0 || r.Hours() >= spec.maxHours {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ByName groups records by event name.
func ByName(records []model.NormalizedRecord, unit model.Unit) model.Table {
	return groupBy(records, unit, func(r model.NormalizedRecord) string {
		return r.EventName
	})
}

// ByMonth groups records by start month (keys "1".."12").
func ByMonth(records []model.NormalizedRecord, unit model.Unit) model.Table {
	return groupBy(records, unit, func(r model.NormalizedRecord) string {
		return strconv.Itoa(r.Month)
	})
}

// ByYear groups records by start year.
func ByYear(records []model.NormalizedRecord, unit model.Unit) model.Table {
	return groupBy(records, unit, func(r model.NormalizedRecord) string {
		return strconv.Itoa(r.Year)
	})
}

func groupBy(records []model.NormalizedRecord, unit model.Unit, key func(model.NormalizedRecord) string) model.Table {
	idx := make(map[string]int)
	rows := make([]model.Row, 0)

	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(rows)
			idx[k] = i
			rows = append(rows, model.Row{Key: k})
		}
		rows[i].Count++
		switch unit {
		case model.UnitHours:
			rows[i].Total += r.Hours()
		default:
			rows[i].Total += r.Minutes()
		}
	}

	return model.Table{Unit: unit, Rows: rows}
}

// Order selects a presentation sort for table rows. Sorting never changes
// totals, only row order.
type Order int

const (
	// ByTotalDesc sorts largest duration first.
	ByTotalDesc Order = iota
	// ByCountDesc sorts most records first.
	ByCountDesc
	// ByKeyAsc sorts by key, numerically when every key is an integer
	// (months, years) and lexically otherwise.
	ByKeyAsc
)

// Sort returns a copy of the table with rows in the requested order.
func Sort(t model.Table, order Order) model.Table {
	rows := make([]model.Row, len(t.Rows))
	copy(rows, t.Rows)

	switch order {
	case ByTotalDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	case ByCountDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	case ByKeyAsc:
		if numeric := allNumericKeys(rows); numeric {
			sort.SliceStable(rows, func(i, j int) bool {
				a, _ := strconv.Atoi(rows[i].Key)
				b, _ := strconv.Atoi(rows[j].Key)
				return a < b
			})
		} else {
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
		}
	}

	return model.Table{Unit: t.Unit, Rows: rows}
}

func allNumericKeys(rows []model.Row) bool {
	for _, r := range rows {
		if _, err := strconv.Atoi(r.Key); err != nil {
			return false
		}
	}
	return true
}

// Top returns the table trimmed to its first n rows; sort first for a
// meaningful top-N.
func Top(t model.Table, n int) model.Table {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return model.Table{Unit: t.Unit, Rows: t.Rows[:n]}
}
