package cmd

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planiflow/internal/schedule"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Estimate the finish date distribution with a Monte Carlo run",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Int("iterations", schedule.DefaultIterations, "number of simulated schedules")
	simulateCmd.Flags().Uint64("seed", 0, "random seed (default: time based)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	iterations, _ := cmd.Flags().GetInt("iterations")
	var rng *rand.Rand
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	l, err := env.load(args[0])
	if err != nil {
		return err
	}
	env.warn(cmd, l.problems)

	sim, err := l.store.Simulate(iterations, rng)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	p := env.printer(cmd, time.Time{})
	p.Title("%s: schedule risk", l.name())
	p.Simulation(l.store, sim)
	return nil
}
