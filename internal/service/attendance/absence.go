package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds the date groups processed at once.
const sweepConcurrency = 4

var _ attendance.AbsenceService = (*AbsenceServiceImpl)(nil)

type AbsenceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	publisher      EventPublisher
	loc            *time.Location
	now            func() time.Time
}

func NewAbsenceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	publisher EventPublisher,
	loc *time.Location,
	now func() time.Time,
) *AbsenceServiceImpl {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AbsenceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		publisher:      publisher,
		loc:            loc,
		now:            now,
	}
}

// sweepPlan is the eligibility pass shared by the sweep and its dry run.
type sweepPlan struct {
	now       time.Time
	weekday   string
	expected  int
	notEnded  []employee.Employee
	dates     []string
	groups    map[string][]employee.Employee
	endedSize int
}

// dateOutcome is one date group after comparing against stored records.
type dateOutcome struct {
	date     string
	recorded int
	missing  []employee.Employee
	inserted []string
}

func (s *AbsenceServiceImpl) plan(ctx context.Context, req attendance.SweepRequest) (sweepPlan, error) {
	if err := req.Validate(); err != nil {
		return sweepPlan{}, err
	}

	now := s.now().In(s.loc)
	p := sweepPlan{
		now:     now,
		weekday: shift.WeekdayName(now),
		groups:  make(map[string][]employee.Employee),
	}

	employees, err := s.employeeRepo.ListExpectedOn(ctx, p.weekday)
	if err != nil {
		slog.Error("Absence sweep: failed to list employees", "weekday", p.weekday, "error", err)
		return sweepPlan{}, attendance.StoreError("list employees", err)
	}

	for _, emp := range employees {
		if emp.IsOffOn(p.weekday) {
			continue
		}
		p.expected++

		sh, err := emp.Shift()
		if err != nil {
			slog.Warn("Absence sweep: skipping employee with invalid shift", "employee_id", emp.ID, "error", err)
			p.notEnded = append(p.notEnded, emp)
			continue
		}
		if !shift.HasEnded(sh, now) {
			p.notEnded = append(p.notEnded, emp)
			continue
		}

		date := shift.TargetDate(sh, now)
		if req.Date != nil && *req.Date != "" {
			date = *req.Date
		}
		if _, ok := p.groups[date]; !ok {
			p.dates = append(p.dates, date)
		}
		p.groups[date] = append(p.groups[date], emp)
		p.endedSize++
	}
	sort.Strings(p.dates)

	return p, nil
}

// resolve compares each date group with stored records and, when write is
// set, inserts absent rows for the missing employees. Groups run concurrently;
// the first store failure cancels the rest.
func (s *AbsenceServiceImpl) resolve(ctx context.Context, p sweepPlan, write bool) ([]dateOutcome, error) {
	outcomes := make([]dateOutcome, len(p.dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for i, date := range p.dates {
		i, date := i, date
		group := p.groups[date]
		g.Go(func() error {
			ids := make([]string, 0, len(group))
			for _, emp := range group {
				ids = append(ids, emp.ID)
			}

			existing, err := s.attendanceRepo.ListByDateForEmployees(gctx, date, ids)
			if err != nil {
				return attendance.StoreError(fmt.Sprintf("list attendance for %s", date), err)
			}
			recorded := make(map[string]struct{}, len(existing))
			for _, record := range existing {
				recorded[record.EmployeeID] = struct{}{}
			}

			out := dateOutcome{date: date}
			missingIDs := make([]string, 0, len(group))
			for _, emp := range group {
				if _, ok := recorded[emp.ID]; ok {
					out.recorded++
					continue
				}
				out.missing = append(out.missing, emp)
				missingIDs = append(missingIDs, emp.ID)
			}

			if write && len(missingIDs) > 0 {
				inserted, err := s.attendanceRepo.CreateAbsences(gctx, date, missingIDs)
				if err != nil {
					return attendance.StoreError(fmt.Sprintf("create absences for %s", date), err)
				}
				out.inserted = inserted
				// Rows that appeared between the read and the insert count as recorded.
				out.recorded += len(missingIDs) - len(inserted)
			}

			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("Absence sweep failed", "error", err)
		return nil, err
	}
	return outcomes, nil
}

// SweepAbsences implements attendance.AbsenceService.
func (s *AbsenceServiceImpl) SweepAbsences(ctx context.Context, req attendance.SweepRequest) (attendance.SweepResult, error) {
	p, err := s.plan(ctx, req)
	if err != nil {
		return attendance.SweepResult{}, err
	}

	outcomes, err := s.resolve(ctx, p, true)
	if err != nil {
		return attendance.SweepResult{}, err
	}

	result := attendance.SweepResult{
		Dates:                p.dates,
		SkippedShiftNotEnded: len(p.notEnded),
		AbsentEmployeeNames:  []string{},
	}
	if result.Dates == nil {
		result.Dates = []string{}
	}

	for _, out := range outcomes {
		names := make(map[string]string, len(out.missing))
		for _, emp := range out.missing {
			names[emp.ID] = emp.FullName
		}
		marked := make([]string, 0, len(out.inserted))
		for _, id := range out.inserted {
			marked = append(marked, names[id])
		}

		result.MarkedAbsent += len(out.inserted)
		result.AlreadyRecorded += out.recorded
		result.AbsentEmployeeNames = append(result.AbsentEmployeeNames, marked...)

		slog.Info("Absence sweep: date processed",
			"date", out.date,
			"marked_absent", len(out.inserted),
			"already_recorded", out.recorded,
		)
		if len(out.inserted) > 0 && s.publisher != nil {
			s.publisher.Publish(sse.TopicAttendance, sse.Event{
				Event: "absence_marked",
				Data: map[string]interface{}{
					"date":      out.date,
					"count":     len(out.inserted),
					"employees": marked,
				},
			})
		}
	}

	slog.Info("Absence sweep completed",
		"weekday", p.weekday,
		"marked_absent", result.MarkedAbsent,
		"already_recorded", result.AlreadyRecorded,
		"skipped_shift_not_ended", result.SkippedShiftNotEnded,
	)
	return result, nil
}

// PreviewAbsences implements attendance.AbsenceService.
func (s *AbsenceServiceImpl) PreviewAbsences(ctx context.Context, req attendance.SweepRequest) (attendance.SweepPreview, error) {
	p, err := s.plan(ctx, req)
	if err != nil {
		return attendance.SweepPreview{}, err
	}

	outcomes, err := s.resolve(ctx, p, false)
	if err != nil {
		return attendance.SweepPreview{}, err
	}

	preview := attendance.SweepPreview{
		CurrentTime:            p.now.Format(time.RFC3339),
		DayOfWeek:              p.weekday,
		TotalEmployees:         p.expected,
		ShiftEndedCount:        p.endedSize,
		ShiftNotEndedCount:     len(p.notEnded),
		ShiftNotEndedEmployees: make([]string, 0, len(p.notEnded)),
		ByDate:                 make([]attendance.DatePreview, 0, len(outcomes)),
	}
	for _, emp := range p.notEnded {
		preview.ShiftNotEndedEmployees = append(preview.ShiftNotEndedEmployees, describe(emp))
	}
	for _, out := range outcomes {
		names := make([]string, 0, len(out.missing))
		for _, emp := range out.missing {
			names = append(names, describe(emp))
		}
		preview.ByDate = append(preview.ByDate, attendance.DatePreview{
			Date:                out.date,
			WouldBeMarkedAbsent: len(out.missing),
			Employees:           names,
			AlreadyRecorded:     out.recorded,
		})
	}
	return preview, nil
}

func describe(emp employee.Employee) string {
	return fmt.Sprintf("%s (shift: %s)", emp.FullName, emp.ShiftLabel())
}
