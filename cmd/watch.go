package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planiflow/internal/telemetry"
	"github.com/papapumpkin/planiflow/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reschedule and reprint a project whenever its file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a change is handled")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.New(args[0], watch.WithDebounce(debounce))
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchLoop(ctx, cmd, env, w)
}

// watchLoop prints the schedule once, then again after every change, until
// ctx is done. Load failures are reported and the loop keeps waiting for the
// next edit.
func watchLoop(ctx context.Context, cmd *cobra.Command, env *runEnv, w *watch.Watcher) error {
	show := func() {
		l, err := env.load(w.Path)
		if err != nil {
			env.warn(cmd, []error{err})
			return
		}
		env.warn(cmd, l.problems)
		p := env.printer(cmd, time.Time{})
		p.Title("%s (%s)", l.name(), time.Now().Format(time.TimeOnly))
		p.Schedule(l.store)
	}

	show()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-w.Changes:
			if !ok {
				return fmt.Errorf("watcher for %s stopped", w.Path)
			}
			if c.Removed {
				env.logger.Warn("project file removed; waiting for it to reappear", "path", c.Path)
				env.record(telemetry.KindFileRemoved, "", c.Path, nil)
				continue
			}
			env.logger.Debug("project file changed", "path", c.Path)
			show()
		}
	}
}
