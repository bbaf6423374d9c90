package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/crossbridge-edu/advisory-cli/internal/catalog"
	"github.com/crossbridge-edu/advisory-cli/internal/fetcher"
)

var (
	catalogFeedURL string
	catalogCountry string
	catalogLimit   int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the school catalog",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the school catalog from the partner feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogFeedURL != "" {
			cfg.Catalog.FeedURL = catalogFeedURL
		}
		if err := cfg.Validate("catalog"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		feedURL := cfg.Catalog.FeedURL
		var dl catalog.Downloader
		if strings.HasPrefix(feedURL, "ftp://") {
			dl = fetcher.NewFTPFetcher(fetcher.FTPOptions{
				Timeout:  time.Duration(cfg.Catalog.FTPTimeoutSecs) * time.Second,
				User:     cfg.Catalog.FTPUser,
				Password: cfg.Catalog.FTPPassword,
			})
		} else {
			dl = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
				Timeout:       time.Duration(cfg.Catalog.TimeoutSecs) * time.Second,
				RatePerSecond: cfg.Catalog.RatePerSecond,
			})
		}

		res, err := catalog.NewSyncer(dl, st).Sync(ctx, feedURL)
		if err != nil {
			return err
		}

		fmt.Printf("synced %d schools (%d rows, %d skipped)\n", res.Upserted, res.RowsRead, res.Skipped)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog schools",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		schools, err := st.ListSchools(ctx, catalogCountry, catalogLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tNAME\tCOUNTRY\tWEBSITE")
		for _, s := range schools {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Ranking, s.Name, s.Country, s.Website)
		}
		return w.Flush()
	},
}

func init() {
	catalogSyncCmd.Flags().StringVar(&catalogFeedURL, "feed", "", "feed URL (default from config)")
	catalogListCmd.Flags().StringVar(&catalogCountry, "country", "", "filter by country")
	catalogListCmd.Flags().IntVar(&catalogLimit, "limit", 0, "max schools to list")

	catalogCmd.AddCommand(catalogSyncCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
