package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// ErrInvalidConfig is returned by Load when a value fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// CalendarConfig holds the default working calendar. WorkingDays uses the
// Monday=0 numbering of the project file.
type CalendarConfig struct {
	WorkingDays []int    `mapstructure:"working_days"`
	HoursPerDay float64  `mapstructure:"hours_per_day"`
	Holidays    []string `mapstructure:"holidays"`
}

// ScheduleConfig holds engine settings.
type ScheduleConfig struct {
	LagMode string `mapstructure:"lag_mode"`
}

// Config holds all runtime configuration for a planiflow run.
// Values are populated from .planiflow.yaml, PLANIFLOW_* env vars, and CLI flags.
type Config struct {
	Calendar   CalendarConfig `mapstructure:"calendar"`
	Schedule   ScheduleConfig `mapstructure:"schedule"`
	DateFormat string         `mapstructure:"date_format"`
	BaselineDB string         `mapstructure:"baseline_db"`
	EventsLog  string         `mapstructure:"events_log"`
	LogLevel   string         `mapstructure:"log_level"`
	Verbose    bool           `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates the
// result.
func Load() (Config, error) {
	viper.SetDefault("calendar.working_days", []int{0, 1, 2, 3, 4})
	viper.SetDefault("calendar.hours_per_day", calendar.DefaultHoursPerDay)
	viper.SetDefault("calendar.holidays", []string{})
	viper.SetDefault("schedule.lag_mode", "working")
	viper.SetDefault("date_format", "iso")
	viper.SetDefault("baseline_db", ".planiflow/baselines.db")
	viper.SetDefault("events_log", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value that would otherwise fail later, deep in a
// command.
func (c Config) Validate() error {
	var errs []error
	if _, err := calendar.ParseLagMode(c.Schedule.LagMode); err != nil {
		errs = append(errs, fmt.Errorf("schedule.lag_mode: %w", err))
	}
	switch strings.ToLower(c.DateFormat) {
	case "iso", "dmy", "dmony":
	default:
		errs = append(errs, fmt.Errorf("date_format: unknown format %q", c.DateFormat))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Calendar.HoursPerDay < 0 {
		errs = append(errs, fmt.Errorf("calendar.hours_per_day: %v is negative", c.Calendar.HoursPerDay))
	}
	if _, err := c.Calendar.weekdays(); err != nil {
		errs = append(errs, fmt.Errorf("calendar.working_days: %w", err))
	}
	for _, h := range c.Calendar.Holidays {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(h)); err != nil {
			errs = append(errs, fmt.Errorf("calendar.holidays: %q is not YYYY-MM-DD", h))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// NewCalendar builds the configured calendar.
func (c Config) NewCalendar(opts ...calendar.Option) (*calendar.Calendar, error) {
	mode, err := calendar.ParseLagMode(c.Schedule.LagMode)
	if err != nil {
		return nil, err
	}
	cal := calendar.New(append([]calendar.Option{calendar.WithLagMode(mode)}, opts...)...)

	days, err := c.Calendar.weekdays()
	if err != nil {
		return nil, err
	}
	if err := cal.SetWorkingDays(days); err != nil {
		return nil, err
	}
	if c.Calendar.HoursPerDay > 0 {
		cal.SetHoursPerDay(c.Calendar.HoursPerDay)
	}
	if err := cal.SetHolidays(c.Calendar.Holidays); err != nil {
		return nil, err
	}
	return cal, nil
}

// Level returns the slog level for log_level, raised to debug by verbose.
func (c Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func (cc CalendarConfig) weekdays() ([]time.Weekday, error) {
	if len(cc.WorkingDays) == 0 {
		return nil, calendar.ErrNoWorkingDays
	}
	days := make([]time.Weekday, 0, len(cc.WorkingDays))
	for _, i := range cc.WorkingDays {
		d, err := calendar.WeekdayAt(i)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}
