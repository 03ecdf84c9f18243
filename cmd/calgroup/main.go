package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"calgroup/internal/aggregate"
	"calgroup/internal/capture"
	"calgroup/internal/chart"
	"calgroup/internal/config"
	"calgroup/internal/ics"
	"calgroup/internal/linkedin"
	appLog "calgroup/internal/log"
	"calgroup/internal/model"
	"calgroup/internal/normalize"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	calendarPath    string
	connectionsPath string
	invitationsPath string
	configPath      string

	from   string
	to     string
	allDay bool
	expand bool

	outDir   string
	png      bool
	top      int
	logLevel string
}

func main() {
	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))

	// Date filters are validated before any input file is touched; a bad
	// value aborts with no partial work done.
	from, err := parseDateArg(flags.from)
	if err != nil {
		fatal("invalid -from", err)
	}
	to, err := parseDateArg(flags.to)
	if err != nil {
		fatal("invalid -to", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		fatal("invalid date range", fmt.Errorf("-to %s is before -from %s", flags.to, flags.from))
	}
	if flags.expand && (from.IsZero() || to.IsZero()) {
		fatal("invalid flags", fmt.Errorf("-expand requires both -from and -to"))
	}

	if flags.calendarPath == "" && flags.connectionsPath == "" && flags.invitationsPath == "" {
		fmt.Fprintln(os.Stderr, "calgroup: at least one of -calendar, -connections, -invitations is required")
		flag.Usage()
		os.Exit(2)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		fatal("failed to load config", err, "config_path", flags.configPath)
	}
	if flags.top > 0 {
		conf.TopEvents = flags.top
	}

	rules, err := normalize.Compile(conf.Grouping)
	if err != nil {
		fatal("invalid grouping rules", err)
	}
	filter, err := aggregate.CompileFilter(conf.Filter)
	if err != nil {
		fatal("invalid filter config", err)
	}

	specs := make([]model.ChartSpec, 0)

	if flags.calendarPath != "" {
		s, err := calendarSpecs(flags, conf, rules, filter, from, to)
		if err != nil {
			fatal("calendar pipeline failed", err, "path", flags.calendarPath)
		}
		specs = append(specs, s...)
	}
	if flags.invitationsPath != "" {
		s, err := invitationSpecs(flags.invitationsPath, conf.Chart)
		if err != nil {
			fatal("invitations pipeline failed", err, "path", flags.invitationsPath)
		}
		specs = append(specs, s...)
	}
	if flags.connectionsPath != "" {
		s, err := connectionSpecs(flags.connectionsPath, conf.Chart)
		if err != nil {
			fatal("connections pipeline failed", err, "path", flags.connectionsPath)
		}
		specs = append(specs, s...)
	}

	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		fatal("failed to create output directory", err, "out", flags.outDir)
	}

	// Each chart renders independently; a bad spec gets a placeholder file
	// and the rest still come out.
	ctx := context.Background()
	for _, res := range chart.RenderAll(specs) {
		writeChart(ctx, flags, res)
	}

	appLog.Info("done", "charts", len(specs), "out", flags.outDir)
}

func calendarSpecs(flags flagConfig, conf *config.Config, rules normalize.Rules, filter aggregate.FilterSpec, from, to time.Time) ([]model.ChartSpec, error) {
	parsed, err := ics.ParseFile(flags.calendarPath)
	if err != nil {
		return nil, err
	}

	var raw []model.RawEvent
	if flags.expand {
		raw, err = ics.Expand(parsed, ics.ExpandOptions{
			From:          from,
			To:            to,
			IncludeAllDay: flags.allDay,
		})
		if err != nil {
			return nil, err
		}
	} else {
		raw = ics.Flatten(parsed, ics.FlattenOptions{
			IncludeAllDay: flags.allDay,
			From:          from,
			To:            to,
		})
	}

	records := aggregate.Filter(normalize.Records(raw, rules), filter)
	appLog.Info("calendar processed",
		"events", len(parsed), "records", len(raw), "after_filter", len(records))

	byName := aggregate.Top(
		aggregate.Sort(aggregate.ByName(records, model.UnitMinutes), aggregate.ByTotalDesc),
		conf.TopEvents)
	monthHours := aggregate.Sort(aggregate.ByMonth(records, model.UnitHours), aggregate.ByKeyAsc)
	monthCount := aggregate.Sort(aggregate.ByMonth(records, model.UnitMinutes), aggregate.ByKeyAsc)
	yearCount := aggregate.Sort(aggregate.ByYear(records, model.UnitMinutes), aggregate.ByKeyAsc)

	style := conf.Chart
	return []model.ChartSpec{
		tableSpec(byName, totals, style,
			fmt.Sprintf("Top %d Events By Time", conf.TopEvents), "Event", "Total Minutes", nil),
		tableSpec(monthHours, totals, style,
			"Total Time Spent Per Month", "Month", "Hours Spent", monthLabel),
		tableSpec(monthCount, counts, style,
			"Total Events Per Month", "Month", "Number of Events", monthLabel),
		tableSpec(yearCount, counts, style,
			"Number of Events Per Year", "Year", "Number of Events", nil),
	}, nil
}

func invitationSpecs(path string, style config.ChartStyle) ([]model.ChartSpec, error) {
	invs, err := linkedin.ReadInvitations(path)
	if err != nil {
		return nil, err
	}
	sent, received := linkedin.SplitDirection(invs)
	appLog.Info("invitations processed", "sent", len(sent), "received", len(received))

	return []model.ChartSpec{
		tableSpec(linkedin.ByWeek(linkedin.SentAtTimes(sent)), counts, style,
			"Invites Sent Per Week", "Week", "Invites", nil),
		tableSpec(linkedin.ByWeek(linkedin.SentAtTimes(received)), counts, style,
			"Invites Received Per Week", "Week", "Invites", nil),
	}, nil
}

func connectionSpecs(path string, style config.ChartStyle) ([]model.ChartSpec, error) {
	conns, err := linkedin.ReadConnections(path)
	if err != nil {
		return nil, err
	}
	recruiters := linkedin.Recruiters(conns)
	appLog.Info("connections processed", "total", len(conns), "recruiters", len(recruiters))

	all := make([]time.Time, 0, len(conns))
	for _, c := range conns {
		all = append(all, c.ConnectedOn)
	}
	rec := make([]time.Time, 0, len(recruiters))
	for _, c := range recruiters {
		rec = append(rec, c.ConnectedOn)
	}

	return []model.ChartSpec{
		tableSpec(linkedin.ByWeek(all), counts, style,
			"New Connections Per Week", "Week", "Connections", nil),
		tableSpec(linkedin.ByWeek(rec), counts, style,
			"Recruiter Connections Per Week", "Week", "Connections", nil),
	}, nil
}

// yValue selects which aggregate column a chart plots.
type yValue int

const (
	totals yValue = iota
	counts
)

func tableSpec(t model.Table, y yValue, style config.ChartStyle, title, xLabel, yLabel string, label func(string) string) model.ChartSpec {
	xs := make([]string, 0, len(t.Rows))
	ys := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		k := row.Key
		if label != nil {
			k = label(k)
		}
		xs = append(xs, k)
		if y == counts {
			ys = append(ys, float64(row.Count))
		} else {
			ys = append(ys, row.Total)
		}
	}
	return model.ChartSpec{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		X:      xs,
		Y:      ys,
		Width:  style.Width,
		Height: style.Height,
		Color:  style.Color,
	}
}

func monthLabel(key string) string {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > 12 {
		return key
	}
	return time.Month(n).String()
}

func writeChart(ctx context.Context, flags flagConfig, res mo.Result[model.Chart]) {
	ch, err := res.Get()
	if err != nil {
		// Placeholder keeps the output set complete without failing the run.
		appLog.Warn("chart skipped", "reason", err.Error())
		name := filepath.Join(flags.outDir, "failed-chart.txt")
		if rerr, ok := err.(*chart.RenderError); ok && rerr.Title != "" {
			name = filepath.Join(flags.outDir, slug(rerr.Title)+".txt")
		}
		_ = os.WriteFile(name, []byte(err.Error()+"\n"), 0o644)
		return
	}

	base := filepath.Join(flags.outDir, slug(ch.Spec.Title))
	if err := os.WriteFile(base+".svg", ch.SVG, 0o644); err != nil {
		fatal("failed to write chart", err, "path", base+".svg")
	}
	appLog.Info("chart written", "path", base+".svg")

	if flags.png {
		if err := capture.ChartPNG(ctx, ch, capture.Options{OutputPath: base + ".png"}); err != nil {
			// Capture failures are isolated per chart, like render failures.
			appLog.Warn("png capture failed", "path", base+".png", "reason", err.Error())
		}
	}
}

// dateLayouts accepted by -from/-to.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDateArg(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a valid date: '%s'", s)
}

func slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func fatal(msg string, err error, kv ...any) {
	appLog.Error(msg, err, kv...)
	os.Exit(1)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.calendarPath, "calendar", "", "Path to an ICS calendar export")
	flag.StringVar(&cfg.connectionsPath, "connections", "", "Path to a LinkedIn connections CSV export")
	flag.StringVar(&cfg.invitationsPath, "invitations", "", "Path to a LinkedIn invitations CSV export")
	flag.StringVar(&cfg.configPath, "config", "calgroup.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.from, "from", "", "Keep events starting on or after this date (YYYY-MM-DD)")
	flag.StringVar(&cfg.to, "to", "", "Keep events starting before this date (YYYY-MM-DD)")
	flag.BoolVar(&cfg.allDay, "all-day", false, "Include all-day events")
	flag.BoolVar(&cfg.expand, "expand", false, "Expand recurring events inside the -from/-to window")
	flag.StringVar(&cfg.outDir, "out", "charts", "Directory for rendered charts")
	flag.BoolVar(&cfg.png, "png", false, "Also capture each chart to PNG via headless Chromium")
	flag.IntVar(&cfg.top, "top", 0, "Rows in the top-events chart (overrides config if > 0)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	return cfg
}
