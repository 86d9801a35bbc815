package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/workbook"
)

// App carries what the commands share. The service is built on first use so
// that token minting works without a data source.
type App struct {
	out         io.Writer
	loadService func(ctx context.Context) (attendance.AttendanceService, error)
	jwtSecret   string
	reportLang  string
	now         func() time.Time
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func (a *App) service(ctx context.Context) (attendance.AttendanceService, error) {
	if a.loadService == nil {
		return nil, fmt.Errorf("no data source configured")
	}
	return a.loadService(ctx)
}

func (a *App) PrintSummary(ctx context.Context, query attendance.RecordQuery) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	result, err := svc.Summary(ctx, query)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tTOTAL\tON-TIME\tLATE\tABSENT\tUNCLASSIFIED\tON-TIME %")
	for _, site := range result.Sites {
		writeSummaryLine(tw, site.SiteID, site.Summary)
	}
	writeSummaryLine(tw, "ALL", result.Summary)
	return tw.Flush()
}

func writeSummaryLine(w io.Writer, label string, s attendance.Summary) {
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
		label, s.Total, s.OnTime, s.Late, s.Absent, s.Unclassified,
		strconv.FormatFloat(s.OnTimeRate, 'f', -1, 64))
}

func (a *App) PrintRecords(ctx context.Context, query attendance.RecordQuery) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	result, err := svc.Records(ctx, query)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tSTAFF\tNAME\tSHIFT\tDATE\tIN\tOUT\tSTATUS")
	for _, rec := range result.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.SiteID, rec.StaffID, rec.Name, rec.ShiftCode,
			rec.DateStart, rec.StartTime, rec.EndTime, rec.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%d record(s), mode %s\n", result.TotalCount, result.Mode)
	return err
}

// Export writes the xlsx report to path and returns the number of records.
func (a *App) Export(ctx context.Context, query attendance.RecordQuery, path string) (int, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return 0, err
	}
	records, err := svc.Records(ctx, query)
	if err != nil {
		return 0, err
	}
	query.Refresh = false
	summary, err := svc.Summary(ctx, query)
	if err != nil {
		return 0, err
	}

	report := workbook.Report{
		Records:     records.Records,
		Summary:     summary,
		Locale:      a.reportLang,
		GeneratedAt: a.clock(),
	}
	if path == "" {
		path = report.Filename()
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := workbook.WriteReport(f, report); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	fmt.Fprintf(a.out, "Wrote %d record(s) to %s\n", len(records.Records), path)
	return len(records.Records), nil
}

func (a *App) MintToken(claims jwt.AccessClaims, ttl time.Duration) error {
	if a.jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is not set")
	}
	token, expiresAt, err := jwt.NewJWTService(a.jwtSecret, ttl).GenerateAccessToken(claims, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	fmt.Fprintf(a.out, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
