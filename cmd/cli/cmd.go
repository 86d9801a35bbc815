package main

import (
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func SetupCommands(a *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "attendance",
		Short:         "Attendance dashboard operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var filter attendance.Filter
	addFilterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&filter.StartDate, "start", "", "first date, YYYY-MM-DD")
		cmd.Flags().StringVar(&filter.EndDate, "end", "", "last date, YYYY-MM-DD")
		cmd.Flags().StringVar(&filter.SiteID, "site", "", "site id")
		cmd.Flags().StringVar(&filter.StaffID, "staff", "", "staff id")
	}

	// overall and per-site counts
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print attendance counts per site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.PrintSummary(cmd.Context(), attendance.RecordQuery{Filter: filter})
		},
	}
	addFilterFlags(summaryCmd)

	var roster bool
	var date string
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Print classified attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := attendance.RecordQuery{Filter: filter, Date: date}
			if roster {
				query.Mode = attendance.ModeRoster
			}
			return a.PrintRecords(cmd.Context(), query)
		},
	}
	addFilterFlags(recordsCmd)
	recordsCmd.Flags().BoolVar(&roster, "roster", false, "list every employee for one day, absent ones included")
	recordsCmd.Flags().StringVar(&date, "date", "", "roster day, YYYY-MM-DD (default today)")

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the attendance report as xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.Export(cmd.Context(), attendance.RecordQuery{Filter: filter}, out)
			return err
		},
	}
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default attendance_<timestamp>.xlsx)")

	var claims jwt.AccessClaims
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.MintToken(claims, ttl)
		},
	}
	tokenCmd.Flags().StringVar(&claims.StaffID, "staff-id", "", "staff id of the viewer")
	tokenCmd.Flags().StringVar(&claims.Name, "name", "", "display name")
	tokenCmd.Flags().StringVar(&claims.Position, "position", "", "position checked by the API gate")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("staff-id")
	_ = tokenCmd.MarkFlagRequired("position")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tokenCmd)

	return rootCmd
}
