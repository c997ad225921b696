package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check race structure: required columns, horse numbers and field sizes",
		Long: "Check race structure: required columns, horse numbers and field sizes.\n" +
			"The records are cleaned first unless --raw is given. Exits non-zero when\n" +
			"any violation is found.",
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Validate the records as loaded, without cleaning")

	cmd.RunE = ctx.withSession(func(cmd *cobra.Command, args []string, s *session) error {
		table, err := s.loadInput(args[0])
		if err != nil {
			return err
		}

		validator := s.newValidator()
		if !raw {
			if table, err = validator.Clean(table); err != nil {
				return err
			}
		}
		result := validator.ValidateRaceData(table)

		if s.json {
			if err := writeJSON(cmd, result); err != nil {
				return err
			}
		} else {
			printViolations(cmd, result)
		}
		if !result.Valid {
			return fmt.Errorf("%s: %d structural violation(s)", args[0], len(result.Violations))
		}
		return nil
	})
	return cmd
}
