package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossbridge-edu/advisory-cli/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load a YAML fixture file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := seed.Load(ctx, st, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("seeded %d students, %d choices, %d documents, %d service records, %d schools\n",
			res.Students, res.Choices, res.Docs, res.Records, res.Schools)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
