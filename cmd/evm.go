package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

var evmCmd = &cobra.Command{
	Use:   "evm <file> <baseline>",
	Short: "Print earned value metrics against a baseline",
	Args:  cobra.ExactArgs(2),
	RunE:  runEVM,
}

func init() {
	evmCmd.Flags().String("status-date", "", "measure progress as of this date (default: today)")
	evmCmd.Flags().String("db", "", "baseline database path (default .planiflow/baselines.db)")
	rootCmd.AddCommand(evmCmd)
}

func runEVM(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		env.cfg.BaselineDB = db
	}
	status, err := dateFlag(cmd, "status-date")
	if err != nil {
		return err
	}
	if status.IsZero() {
		status = calendar.Truncate(time.Now())
	}

	l, err := env.load(args[0])
	if err != nil {
		return err
	}
	env.warn(cmd, l.problems)

	name := args[1]
	if err := env.ensureBaseline(cmd.Context(), l, name); err != nil {
		return err
	}
	rep, err := l.store.EarnedValue(name, status)
	if err != nil {
		return err
	}

	p := env.printer(cmd, status)
	p.Title("%s: earned value", l.name())
	p.EarnedValue(rep)
	return nil
}
