package normalize

import (
	"fmt"
	"regexp"

	"calgroup/internal/config"
	"calgroup/internal/model"
)

// Rule is a compiled name-grouping rule.
type Rule struct {
	re          *regexp.Regexp
	replacement string
}

// Rules is an ordered list of grouping rules; Apply checks them in order
// and the first match wins.
type Rules []Rule

// Compile compiles grouping rule specs. Each pattern must match the whole
// event name, so patterns are anchored; "Standup.*" matches
// "Standup (weekly)" but not "Team Standup (weekly)".
func Compile(specs []config.GroupingRule) (Rules, error) {
	rules := make(Rules, 0, len(specs))
	for _, s := range specs {
		re, err := regexp.Compile(`\A(?:` + s.Pattern + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("grouping rule %q: %w", s.Pattern, err)
		}
		rules = append(rules, Rule{re: re, replacement: s.Replacement})
	}
	return rules, nil
}

// Apply returns the replacement of the first rule whose pattern matches the
// full name, or the name unchanged when no rule matches.
func (rs Rules) Apply(name string) string {
	for _, r := range rs {
		if r.re.MatchString(name) {
			return r.replacement
		}
	}
	return name
}

// Record flattens one RawEvent into a NormalizedRecord. The date and hour
// fields come from the event start; the duration is end minus start in
// seconds and is kept as-is even when negative (end before start in the
// source file).
func Record(ev model.RawEvent, rules Rules) model.NormalizedRecord {
	return model.NormalizedRecord{
		Day:             ev.Start.Day(),
		Month:           int(ev.Start.Month()),
		Year:            ev.Start.Year(),
		Hour:            ev.Start.Hour(),
		EventName:       rules.Apply(ev.Name),
		DurationSeconds: ev.End.Sub(ev.Start).Seconds(),
	}
}

// Records maps RawEvents 1:1 onto NormalizedRecords.
func Records(events []model.RawEvent, rules Rules) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, Record(ev, rules))
	}
	return out
}
