package main

import (
	"fmt"
	"time"

	"Mansoor88-6/code-activity-agent/internal/config"
	"Mansoor88-6/code-activity-agent/internal/database"
	"Mansoor88-6/code-activity-agent/internal/logger"
	"Mansoor88-6/code-activity-agent/internal/report"
	"Mansoor88-6/code-activity-agent/internal/repository"
	"Mansoor88-6/code-activity-agent/internal/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		date   string
		asJSON bool
		list   bool
		top    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tracked time for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if date == "" {
				date = stats.DateKey(time.Now())
			}
			if _, err := time.ParseInLocation(stats.DateLayout, date, time.Local); err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
			}

			// the report goes to stdout, only problems are logged
			log, err := logger.New("warn", cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			db, err := database.New(cfg.StoragePath, log.Logger)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewTimeEntryRepository(db.DB)
			out := cmd.OutOrStdout()

			if list {
				days, err := repo.Days(cmd.Context())
				if err != nil {
					return err
				}
				for _, d := range days {
					fmt.Fprintln(out, d)
				}
				return nil
			}

			day, err := repo.DailyStats(cmd.Context(), date)
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(out, day)
			}
			return report.Render(out, day, top)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to report as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&list, "list", false, "List the days with tracked time")
	cmd.Flags().IntVar(&top, "top", 10, "Rows per breakdown, 0 for all")
	return cmd
}
