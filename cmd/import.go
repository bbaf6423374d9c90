package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossbridge-edu/advisory-cli/internal/roster"
)

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import <roster.xlsx>",
	Short: "Import a student roster from an XLSX sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := roster.NewImporter(st).ImportXLSX(ctx, args[0], importSheet)
		if err != nil {
			return err
		}

		fmt.Printf("created %d students (%d rows skipped)\n", res.Created, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default: first sheet)")
	rootCmd.AddCommand(importCmd)
}
