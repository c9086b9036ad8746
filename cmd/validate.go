package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planiflow/internal/project"
	"github.com/papapumpkin/planiflow/internal/telemetry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a project file for structural and semantic problems",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	p, err := project.LoadFile(args[0])
	if err != nil {
		return err
	}

	printer := env.printer(cmd, time.Time{})
	errs := project.Validate(p)
	env.record(telemetry.KindValidated, p.Name, args[0], map[string]int{"problems": len(errs)})
	if len(errs) > 0 {
		printer.Problems(errs)
		return fmt.Errorf("validation failed with %d problem(s)", len(errs))
	}
	printer.Note("%s: %d tasks, %d resources, no problems", args[0], len(p.Tasks), len(p.Resources))
	return nil
}
