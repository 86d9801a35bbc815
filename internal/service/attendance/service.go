package attendance

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/smc-analytics/attendance-dashboard/internal/service/ingest"
	"golang.org/x/sync/errgroup"
)

// Config holds attendance service configuration
type Config struct {
	Location           *time.Location        // default: UTC
	GraceField         attendance.GraceField // default: grace_period
	ReferenceShiftCode string                // default: first shift
	Now                func() time.Time      // default: time.Now

	// Publisher is optional; it receives every new snapshot.
	Publisher attendance.SnapshotPublisher
}

type AttendanceServiceImpl struct {
	source     attendance.Source
	store      attendance.SnapshotStore
	config     Config
	classifier Classifier
}

func NewAttendanceService(source attendance.Source, store attendance.SnapshotStore, cfg Config) attendance.AttendanceService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.GraceField == "" {
		cfg.GraceField = attendance.GraceFieldGracePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &AttendanceServiceImpl{
		source:     source,
		store:      store,
		config:     cfg,
		classifier: Classifier{Field: cfg.GraceField},
	}
}

// Refresh implements attendance.AttendanceService. A failed fetch leaves the
// current snapshot in place.
func (s *AttendanceServiceImpl) Refresh(ctx context.Context) (attendance.SnapshotInfo, error) {
	payload, err := s.source.Fetch(ctx)
	if err != nil {
		return attendance.SnapshotInfo{}, fmt.Errorf("failed to fetch attendance data: %w", err)
	}

	snap := ingest.Normalize(payload)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.SnapshotInfo{}, fmt.Errorf("failed to generate snapshot id: %w", err)
	}
	snap.ID = id.String()
	snap.FetchedAt = s.config.Now().UTC()

	s.store.Replace(snap)

	slog.Info("Snapshot refreshed",
		"snapshot_id", snap.ID,
		"logs", len(snap.Logs),
		"employees", len(snap.Employees),
		"shifts", len(snap.Shifts),
		"invalid_dates", snap.Stats.InvalidDates,
	)

	info := snapshotInfo(snap)
	if s.config.Publisher != nil {
		s.config.Publisher.PublishSnapshot(info)
	}
	return info, nil
}

// Snapshot implements attendance.AttendanceService. It never fetches.
func (s *AttendanceServiceImpl) Snapshot(ctx context.Context) (attendance.SnapshotInfo, error) {
	snap, ok := s.store.Current()
	if !ok {
		return attendance.SnapshotInfo{}, attendance.ErrSnapshotNotLoaded
	}
	return snapshotInfo(snap), nil
}

// RawPayload implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RawPayload(ctx context.Context) (sheet.Payload, error) {
	payload, err := s.source.Fetch(ctx)
	if err != nil {
		return sheet.Payload{}, fmt.Errorf("failed to fetch attendance data: %w", err)
	}
	return payload, nil
}

// Records implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Records(ctx context.Context, query attendance.RecordQuery) (attendance.ListRecordsResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records := s.records(snap, query)
	return attendance.ListRecordsResponse{
		SnapshotID: snap.ID,
		Mode:       query.Mode,
		TotalCount: len(records),
		Records:    records,
	}, nil
}

// Summary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Summary(ctx context.Context, query attendance.RecordQuery) (attendance.SummaryResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	records := s.records(snap, query)
	return attendance.SummaryResponse{
		Summary: Summarize(records),
		Sites:   SummarizeBySite(records),
	}, nil
}

// Day implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Day(ctx context.Context, day attendance.Day, query attendance.RecordQuery) (attendance.DayView, error) {
	if err := query.Validate(); err != nil {
		return attendance.DayView{}, err
	}
	if _, err := DayDate(s.now(), day); err != nil {
		return attendance.DayView{}, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return attendance.DayView{}, err
	}
	return s.dayView(snap, day, query)
}

// Dashboard implements attendance.AttendanceService. The snapshot is loaded
// once and every section is computed from it concurrently.
func (s *AttendanceServiceImpl) Dashboard(ctx context.Context, query attendance.RecordQuery) (attendance.DashboardResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.DashboardResponse{}, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	var (
		today     attendance.DayView
		yesterday attendance.DayView
		summary   attendance.Summary
		sites     []attendance.SiteSummary
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		view, err := s.dayView(snap, attendance.DayToday, query)
		if err != nil {
			return err
		}
		today = view
		return nil
	})

	g.Go(func() error {
		view, err := s.dayView(snap, attendance.DayYesterday, query)
		if err != nil {
			return err
		}
		yesterday = view
		return nil
	})

	g.Go(func() error {
		records := s.records(snap, query)
		summary = Summarize(records)
		sites = SummarizeBySite(records)
		return nil
	})

	if err := g.Wait(); err != nil {
		return attendance.DashboardResponse{}, err
	}

	return attendance.DashboardResponse{
		Snapshot:  snapshotInfo(snap),
		Today:     today,
		Yesterday: yesterday,
		Summary:   summary,
		Sites:     sites,
	}, nil
}

// Options implements attendance.AttendanceService. Sites come from both the
// roster and the logs; staff are narrowed to the selected site.
func (s *AttendanceServiceImpl) Options(ctx context.Context, query attendance.RecordQuery) (attendance.FilterOptions, error) {
	if err := query.Validate(); err != nil {
		return attendance.FilterOptions{}, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return attendance.FilterOptions{}, err
	}

	siteSet := make(map[string]struct{})
	for _, e := range snap.Employees {
		if e.SiteID != "" {
			siteSet[e.SiteID] = struct{}{}
		}
	}
	for _, l := range snap.Logs {
		if l.SiteID != "" {
			siteSet[l.SiteID] = struct{}{}
		}
	}
	sites := make([]string, 0, len(siteSet))
	for id := range siteSet {
		sites = append(sites, id)
	}
	slices.Sort(sites)

	staff := make([]attendance.StaffOption, 0, len(snap.Employees))
	for _, e := range snap.Employees {
		if query.SiteID != "" && e.SiteID != query.SiteID {
			continue
		}
		staff = append(staff, attendance.StaffOption{ID: e.StaffID, Name: e.Name})
	}
	slices.SortStableFunc(staff, func(a, b attendance.StaffOption) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return attendance.FilterOptions{Sites: sites, Staff: staff}, nil
}

// Employees implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Employees(ctx context.Context, query attendance.RecordQuery) ([]attendance.Employee, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return nil, err
	}

	employees := make([]attendance.Employee, 0, len(snap.Employees))
	for _, e := range snap.Employees {
		if query.SiteID != "" && e.SiteID != query.SiteID {
			continue
		}
		if query.StaffID != "" && e.StaffID != query.StaffID {
			continue
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// Shifts implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Shifts(ctx context.Context, query attendance.RecordQuery) ([]attendance.Shift, error) {
	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.Shifts), nil
}

// Logs implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Logs(ctx context.Context, query attendance.RecordQuery) ([]attendance.LogEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.current(ctx, query.Refresh)
	if err != nil {
		return nil, err
	}

	f := query.Filter
	logs := make([]attendance.LogEntry, 0, len(snap.Logs))
	for _, l := range snap.Logs {
		if f.SiteID != "" && l.SiteID != f.SiteID {
			continue
		}
		if f.StaffID != "" && l.StaffID != f.StaffID {
			continue
		}
		if f.DateBounded() {
			if !l.DateValid {
				continue
			}
			if f.StartDate != "" && l.DateClockIn < f.StartDate {
				continue
			}
			if f.EndDate != "" && l.DateClockIn > f.EndDate {
				continue
			}
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// current returns the snapshot to query, fetching one when forced or when
// nothing has been loaded yet.
func (s *AttendanceServiceImpl) current(ctx context.Context, refresh bool) (*attendance.Snapshot, error) {
	if !refresh {
		if snap, ok := s.store.Current(); ok {
			return snap, nil
		}
	}

	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	snap, ok := s.store.Current()
	if !ok {
		return nil, attendance.ErrSnapshotNotLoaded
	}
	return snap, nil
}

// records builds the sorted record list for query from snap.
func (s *AttendanceServiceImpl) records(snap *attendance.Snapshot, query attendance.RecordQuery) []attendance.AttendanceRecord {
	shift := ReferenceShift(snap.Shifts, s.config.ReferenceShiftCode)

	var records []attendance.AttendanceRecord
	if query.Mode == attendance.ModeRoster {
		date := query.Date
		if date == "" {
			date, _ = DayDate(s.now(), attendance.DayToday)
		}
		records = RosterRecords(snap.Employees, snap.Logs, date, query.Filter, shift, s.classifier)
	} else {
		records = FilterRecords(BuildRecords(snap.Logs, shift, s.classifier), query.Filter)
	}

	SortRecords(records)
	return records
}

func (s *AttendanceServiceImpl) dayView(snap *attendance.Snapshot, day attendance.Day, query attendance.RecordQuery) (attendance.DayView, error) {
	date, err := DayDate(s.now(), day)
	if err != nil {
		return attendance.DayView{}, err
	}

	dayQuery := query
	dayQuery.Filter = DayFilter(query.Filter, date)
	dayQuery.Date = date

	records := s.records(snap, dayQuery)
	return attendance.DayView{
		Day:     day,
		Date:    date,
		Summary: Summarize(records),
		Records: records,
	}, nil
}

// now returns the current time in the reporting location.
func (s *AttendanceServiceImpl) now() time.Time {
	return s.config.Now().In(s.config.Location)
}

func snapshotInfo(snap *attendance.Snapshot) attendance.SnapshotInfo {
	return attendance.SnapshotInfo{
		ID:        snap.ID,
		FetchedAt: snap.FetchedAt,
		Logs:      len(snap.Logs),
		Employees: len(snap.Employees),
		Shifts:    len(snap.Shifts),
		Stats:     snap.Stats,
	}
}
