package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
	"github.com/crossbridge-edu/advisory-cli/pkg/notion"
)

var (
	listMentor   string
	listCountry  string
	listArchived bool
	listLimit    int
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage the student roster",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		students, err := st.ListStudents(ctx, store.StudentFilter{
			Mentor:          listMentor,
			TargetCountry:   listCountry,
			IncludeArchived: listArchived,
			Limit:           listLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTARGET\tMENTOR\tEMAIL")
		for _, s := range students {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n",
				s.ID, s.Name, s.TargetCountry, s.TargetDegree, s.MentorName, s.Email)
		}
		return w.Flush()
	},
}

var studentsPullLeadsCmd = &cobra.Command{
	Use:   "pull-leads",
	Short: "Import new leads from the Notion intake database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("leads"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		client := notion.NewClient(cfg.Notion.Token)
		pages, err := notion.QueryNewLeads(ctx, client, cfg.Notion.LeadDB)
		if err != nil {
			return err
		}

		imported, skipped := 0, 0
		for _, page := range pages {
			lead, err := notion.PageToLead(page)
			if err != nil {
				skipped++
				zap.L().Warn("skipping lead", zap.Error(err))
				continue
			}

			if _, err := st.CreateStudent(ctx, model.StudentProfile{
				Name:          lead.Name,
				Email:         lead.Email,
				Phone:         lead.Phone,
				CurrentSchool: lead.CurrentSchool,
				TargetDegree:  lead.TargetDegree,
				TargetCountry: lead.TargetCountry,
				MentorName:    lead.Mentor,
				Notes:         lead.Notes,
			}); err != nil {
				return err
			}
			if err := notion.MarkImported(ctx, client, lead.PageID); err != nil {
				return err
			}
			imported++
		}

		fmt.Printf("imported %d leads (%d skipped)\n", imported, skipped)
		return nil
	},
}

func init() {
	studentsListCmd.Flags().StringVar(&listMentor, "mentor", "", "filter by mentor name")
	studentsListCmd.Flags().StringVar(&listCountry, "country", "", "filter by target country")
	studentsListCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived students")
	studentsListCmd.Flags().IntVar(&listLimit, "limit", 0, "max students to list")

	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsPullLeadsCmd)
	rootCmd.AddCommand(studentsCmd)
}
