package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/planiflow/internal/baselinestore"
	"github.com/papapumpkin/planiflow/internal/schedule"
	"github.com/papapumpkin/planiflow/internal/telemetry"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Save, list, compare and delete schedule baselines",
	Long: `Baselines are snapshots of task dates and progress. They are kept in the
project file and mirrored to a local SQLite database (baseline_db), so a
baseline can be compared against even after it was dropped from the file.`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <file> <name>",
	Short: "Snapshot the current schedule as a named baseline",
	Args:  cobra.ExactArgs(2),
	RunE:  runBaselineSave,
}

var baselineListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the stored baselines of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineList,
}

var baselineCompareCmd = &cobra.Command{
	Use:   "compare <file> <name>",
	Short: "Compare the current schedule against a baseline",
	Args:  cobra.ExactArgs(2),
	RunE:  runBaselineCompare,
}

var baselineDeleteCmd = &cobra.Command{
	Use:   "delete <file> <name>",
	Short: "Delete a stored baseline",
	Args:  cobra.ExactArgs(2),
	RunE:  runBaselineDelete,
}

func init() {
	baselineCmd.PersistentFlags().String("db", "", "baseline database path (default .planiflow/baselines.db)")
	_ = viper.BindPFlag("baseline_db", baselineCmd.PersistentFlags().Lookup("db"))
	baselineSaveCmd.Flags().Bool("write", false, "also record the baseline in the project file")

	baselineCmd.AddCommand(baselineSaveCmd, baselineListCmd, baselineCompareCmd, baselineDeleteCmd)
	rootCmd.AddCommand(baselineCmd)
}

// openBaselines opens the configured baseline database, creating its
// directory if needed.
func (e *runEnv) openBaselines(ctx context.Context) (*baselinestore.Store, error) {
	path := e.cfg.BaselineDB
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create baseline directory: %w", err)
		}
	}
	bs, err := baselinestore.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open baselines: %w", err)
	}
	return bs, nil
}

// ensureBaseline makes the named baseline available in l.store, restoring
// it from the database when the project file does not carry it.
func (e *runEnv) ensureBaseline(ctx context.Context, l *loaded, name string) error {
	if _, ok := l.store.Baseline(name); ok {
		return nil
	}
	bs, err := e.openBaselines(ctx)
	if err != nil {
		return err
	}
	defer bs.Close()

	b, err := bs.Load(ctx, l.name(), name)
	if err != nil {
		return err
	}
	if err := l.store.RestoreBaseline(b); err != nil {
		return fmt.Errorf("restore baseline %q: %w", name, err)
	}
	e.logger.Debug("baseline restored from database", "project", l.name(), "baseline", name)
	return nil
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	l, err := env.load(args[0])
	if err != nil {
		return err
	}
	env.warn(cmd, l.problems)

	name := args[1]
	// Saving again under an existing name replaces the old snapshot.
	if err := l.store.DeleteBaseline(name); err != nil && !errors.Is(err, schedule.ErrBaselineNotFound) {
		return err
	}
	b, err := l.store.CreateBaseline(name)
	if err != nil {
		return fmt.Errorf("create baseline: %w", err)
	}

	bs, err := env.openBaselines(cmd.Context())
	if err != nil {
		return err
	}
	defer bs.Close()
	if err := bs.Save(cmd.Context(), l.name(), b); err != nil {
		return err
	}

	env.record(telemetry.KindBaselineSaved, l.name(), l.path, map[string]any{"baseline": name, "id": b.ID, "tasks": len(b.Tasks)})
	env.printer(cmd, time.Time{}).Note("saved baseline %q of %s (%d tasks)", name, l.name(), len(b.Tasks))
	if write, _ := cmd.Flags().GetBool("write"); write {
		return env.save(l)
	}
	return nil
}

func runBaselineList(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	l, err := env.load(args[0])
	if err != nil {
		return err
	}

	bs, err := env.openBaselines(cmd.Context())
	if err != nil {
		return err
	}
	defer bs.Close()
	entries, err := bs.List(cmd.Context(), l.name())
	if err != nil {
		return err
	}

	p := env.printer(cmd, time.Time{})
	p.Title("%s: baselines", l.name())
	p.BaselineList(entries)
	return nil
}

func runBaselineCompare(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	l, err := env.load(args[0])
	if err != nil {
		return err
	}
	env.warn(cmd, l.problems)

	name := args[1]
	if err := env.ensureBaseline(cmd.Context(), l, name); err != nil {
		return err
	}
	c, err := l.store.CompareBaseline(name)
	if err != nil {
		return err
	}

	p := env.printer(cmd, time.Time{})
	p.Title("%s against %q", l.name(), name)
	p.Comparison(c)
	return nil
}

func runBaselineDelete(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	l, err := env.load(args[0])
	if err != nil {
		return err
	}

	bs, err := env.openBaselines(cmd.Context())
	if err != nil {
		return err
	}
	defer bs.Close()
	if err := bs.Delete(cmd.Context(), l.name(), args[1]); err != nil {
		return err
	}
	env.record(telemetry.KindBaselineDeleted, l.name(), l.path, map[string]string{"baseline": args[1]})
	env.printer(cmd, time.Time{}).Note("deleted baseline %q of %s", args[1], l.name())
	return nil
}
