package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planiflow/internal/calendar"
	"github.com/papapumpkin/planiflow/internal/config"
	"github.com/papapumpkin/planiflow/internal/project"
	"github.com/papapumpkin/planiflow/internal/report"
	"github.com/papapumpkin/planiflow/internal/schedule"
	"github.com/papapumpkin/planiflow/internal/telemetry"
)

// runEnv is the resolved configuration of one command invocation.
type runEnv struct {
	cfg    config.Config
	logger *slog.Logger
	dates  project.DateFormat
	events *telemetry.Emitter // nil unless events_log is set
}

// newRunEnv loads configuration and installs the default logger, which
// writes to the command's stderr. Callers must close the returned env.
func newRunEnv(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	dates, err := project.ParseDateFormat(cfg.DateFormat)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	env := &runEnv{cfg: cfg, logger: logger, dates: dates}
	if cfg.EventsLog != "" {
		if env.events, err = telemetry.NewEmitter(cfg.EventsLog); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// close releases the event log.
func (e *runEnv) close() {
	if err := e.events.Close(); err != nil {
		e.logger.Warn("closing event log", "error", err)
	}
}

// record appends an event to the event log. Failures are logged, not
// returned: the log never blocks a command.
func (e *runEnv) record(kind, projectName, path string, data any) {
	if err := e.events.Record(kind, projectName, path, data); err != nil {
		e.logger.Warn("writing event log", "kind", kind, "error", err)
	}
}

// loaded is a scheduled project file.
type loaded struct {
	path     string
	project  project.Project
	store    *schedule.Store
	problems []error
}

// name is the key baselines are stored under: the project name, or the
// file name when the project has none.
func (l *loaded) name() string {
	if l.project.Name != "" {
		return l.project.Name
	}
	return strings.TrimSuffix(filepath.Base(l.path), filepath.Ext(l.path))
}

// load reads and schedules the project at path. Each load gets a fresh
// calendar because the project file may override the configured one.
// Records that could not be imported are returned in problems, not as an
// error.
func (e *runEnv) load(path string) (*loaded, error) {
	p, err := project.LoadFile(path)
	if err != nil {
		return nil, err
	}
	cal, err := e.cfg.NewCalendar(calendar.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	s, problems := project.Build(p, cal, schedule.WithLogger(e.logger))
	e.logger.Debug("project loaded", "path", path, "tasks", s.Len(), "problems", len(problems))
	l := &loaded{path: path, project: p, store: s, problems: problems}
	data := map[string]any{"tasks": s.Len(), "problems": len(problems)}
	if end, ok := s.ProjectEnd(); ok {
		data["finish"] = end.Format(time.DateOnly)
	}
	e.record(telemetry.KindProjectLoaded, l.name(), path, data)
	return l, nil
}

// save writes the store back to its file in the configured date format.
func (e *runEnv) save(l *loaded) error {
	if err := project.SaveFile(l.path, project.Snapshot(l.store, l.project.Name, e.dates)); err != nil {
		return fmt.Errorf("saving %s: %w", l.path, err)
	}
	e.logger.Info("project saved", "path", l.path)
	e.record(telemetry.KindProjectSaved, l.name(), l.path, nil)
	return nil
}

// printer returns a report printer on the command's stdout. A zero today
// means the current day.
func (e *runEnv) printer(cmd *cobra.Command, today time.Time) *report.Printer {
	opts := []report.Option{report.WithDateFormat(e.dates)}
	if !today.IsZero() {
		opts = append(opts, report.WithToday(today))
	}
	return report.New(cmd.OutOrStdout(), opts...)
}

// warn prints import problems to stderr.
func (e *runEnv) warn(cmd *cobra.Command, problems []error) {
	if len(problems) == 0 {
		return
	}
	report.New(cmd.ErrOrStderr()).Problems(problems)
}

// dateFlag parses an optional date flag. An unset flag yields the zero time.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := project.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}
