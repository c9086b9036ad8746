package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <file>",
	Short: "Reschedule a project and print its task table",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

var cpmCmd = &cobra.Command{
	Use:   "cpm <file>",
	Short: "Print the critical path analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runCPM,
}

var tracksCmd = &cobra.Command{
	Use:   "tracks <file>",
	Short: "Print independent dependency chains",
	Args:  cobra.ExactArgs(1),
	RunE:  runTracks,
}

var resourcesCmd = &cobra.Command{
	Use:   "resources <file>",
	Short: "Print resource hours, cost and over-allocations",
	Args:  cobra.ExactArgs(1),
	RunE:  runResources,
}

func init() {
	scheduleCmd.Flags().Bool("write", false, "write the rescheduled dates back to the file")
	scheduleCmd.Flags().String("today", "", "classify task status against this date (default: now)")
	tracksCmd.Flags().Bool("waves", false, "also print dependency waves")
	resourcesCmd.Flags().Bool("costs", false, "also print the cost breakdown by period")

	rootCmd.AddCommand(scheduleCmd, cpmCmd, tracksCmd, resourcesCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	today, err := dateFlag(cmd, "today")
	if err != nil {
		return err
	}
	l, err := env.load(args[0])
	if err != nil {
		return err
	}
	env.warn(cmd, l.problems)

	p := env.printer(cmd, today)
	p.Title("%s", l.name())
	p.Schedule(l.store)

	if write, _ := cmd.Flags().GetBool("write"); write {
		return env.save(l)
	}
	return nil
}

func runCPM(cmd *cobra.Command, args []string) error {
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

	res, err := l.store.CriticalPath()
	if err != nil {
		return fmt.Errorf("critical path: %w", err)
	}
	p := env.printer(cmd, time.Time{})
	p.Title("%s: critical path", l.name())
	p.CriticalPath(l.store, res)
	return nil
}

func runTracks(cmd *cobra.Command, args []string) error {
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

	p := env.printer(cmd, time.Time{})
	if err := p.Tracks(l.store); err != nil {
		return err
	}
	if waves, _ := cmd.Flags().GetBool("waves"); waves {
		return p.Waves(l.store)
	}
	return nil
}

func runResources(cmd *cobra.Command, args []string) error {
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

	p := env.printer(cmd, time.Time{})
	p.Allocation(l.store.ResourceAllocation(), l.store.Overallocations())
	if costs, _ := cmd.Flags().GetBool("costs"); costs {
		p.Costs(l.store.CostBreakdown(), l.store.Resources())
	}
	return nil
}
