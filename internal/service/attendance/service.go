package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

// EventPublisher receives attendance events after successful writes.
type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	publisher      EventPublisher
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	publisher EventPublisher,
	loc *time.Location,
	now func() time.Time,
) *AttendanceServiceImpl {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		publisher:      publisher,
		loc:            loc,
		now:            now,
	}
}

// localNow is the single conversion of the current instant into the attendance zone.
func (s *AttendanceServiceImpl) localNow() time.Time {
	return s.now().In(s.loc)
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if req.EmployeeID == "" {
		return attendance.CheckInResponse{}, attendance.ErrUnauthorized
	}
	now := s.localNow()

	emp, sh, err := s.loadEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	lateMinutes := 0
	date := shift.AttendanceDate(sh, now)
	if sh != nil {
		check := sh.CheckInWindow(now)
		if !check.Allowed {
			return attendance.CheckInResponse{}, attendance.NewWindowViolation(check)
		}
		lateMinutes = sh.LateMinutes(sh.AttendanceDay(now), now)
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.CheckInResponse{}, s.storeFailure("get attendance", emp.ID, err)
	}
	if existing.HasCheckedIn() {
		return attendance.CheckInResponse{}, attendance.ErrAlreadyCheckedIn
	}

	ip := req.IPAddress
	if ip == "" {
		ip = attendance.UnknownIP
	}
	status := attendance.StatusFor(lateMinutes)

	if existing != nil {
		// An absent row from an earlier sweep is superseded by the check-in.
		existing.CheckInTime = &now
		existing.IPAddress = &ip
		existing.LateMinutes = lateMinutes
		existing.Status = status
		if err := s.attendanceRepo.Update(ctx, *existing); err != nil {
			return attendance.CheckInResponse{}, s.storeFailure("update attendance", emp.ID, err)
		}
		slog.Info("Check-in superseded absent record", "employee_id", emp.ID, "date", date, "status", status)
	} else {
		_, err := s.attendanceRepo.Create(ctx, attendance.Record{
			EmployeeID:  emp.ID,
			Date:        date,
			CheckInTime: &now,
			Status:      status,
			LateMinutes: lateMinutes,
			IPAddress:   &ip,
		})
		if errors.Is(err, attendance.ErrDuplicateAttendance) {
			return attendance.CheckInResponse{}, attendance.ErrAlreadyCheckedIn
		}
		if err != nil {
			return attendance.CheckInResponse{}, s.storeFailure("create attendance", emp.ID, err)
		}
		slog.Info("Checked in", "employee_id", emp.ID, "date", date, "status", status, "late_minutes", lateMinutes)
	}

	resp := attendance.CheckInResponse{
		Date:        date,
		CheckInTime: now.Format(time.RFC3339),
		IPAddress:   ip,
		LateMinutes: lateMinutes,
		Status:      status,
	}
	s.publish("check_in", map[string]interface{}{
		"employee_id":   emp.ID,
		"employee_name": emp.FullName,
		"date":          date,
		"status":        status,
		"late_minutes":  lateMinutes,
	})
	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	if req.EmployeeID == "" {
		return attendance.CheckOutResponse{}, attendance.ErrUnauthorized
	}
	now := s.localNow()

	emp, sh, err := s.loadEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}
	date := shift.AttendanceDate(sh, now)

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.CheckOutResponse{}, s.storeFailure("get attendance", emp.ID, err)
	}
	if !record.HasCheckedIn() {
		return attendance.CheckOutResponse{}, attendance.ErrNotCheckedIn
	}
	if record.HasCheckedOut() {
		return attendance.CheckOutResponse{}, attendance.ErrAlreadyCheckedOut
	}

	earlyMinutes := 0
	if sh != nil {
		earlyMinutes = sh.EarlyDepartureMinutes(sh.AttendanceDay(now), now)
	}

	record.CheckOutTime = &now
	record.EarlyDepartureMinutes = earlyMinutes
	if err := s.attendanceRepo.Update(ctx, *record); err != nil {
		return attendance.CheckOutResponse{}, s.storeFailure("update attendance", emp.ID, err)
	}
	slog.Info("Checked out", "employee_id", emp.ID, "date", date, "early_departure_minutes", earlyMinutes)

	s.publish("check_out", map[string]interface{}{
		"employee_id":             emp.ID,
		"employee_name":           emp.FullName,
		"date":                    date,
		"early_departure_minutes": earlyMinutes,
	})
	return attendance.CheckOutResponse{
		Date:                  date,
		CheckOutTime:          now.Format(time.RFC3339),
		EarlyDepartureMinutes: earlyMinutes,
	}, nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, employeeID string) (attendance.TodayStatusResponse, error) {
	if employeeID == "" {
		return attendance.TodayStatusResponse{}, attendance.ErrUnauthorized
	}
	now := s.localNow()

	emp, sh, err := s.loadEmployee(ctx, employeeID)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}
	date := shift.AttendanceDate(sh, now)

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.TodayStatusResponse{}, s.storeFailure("get attendance", emp.ID, err)
	}

	resp := attendance.TodayStatusResponse{
		Date:          date,
		HasCheckedIn:  record.HasCheckedIn(),
		HasCheckedOut: record.HasCheckedOut(),
	}
	if record != nil {
		mapped := mapRecordToResponse(*record)
		resp.Attendance = &mapped
	}

	var window *shift.WindowCheck
	if sh != nil {
		check := sh.CheckInWindow(now)
		window = &check
		resp.Shift = &attendance.ShiftInfo{
			Start:       sh.Start.String(),
			End:         sh.End.String(),
			Overnight:   sh.IsOvernight(),
			WindowOpens: sh.WindowOpens().String(),
		}
	}

	resp.CanCheckIn = !resp.HasCheckedIn && (window == nil || window.Allowed)
	resp.CanCheckOut = resp.HasCheckedIn && !resp.HasCheckedOut

	switch {
	case resp.HasCheckedOut:
		resp.Message = "You have checked out for today"
	case resp.HasCheckedIn:
		resp.Message = "You are checked in"
	case window != nil && !window.Allowed:
		resp.Message = attendance.NewWindowViolation(*window).Error()
	default:
		resp.Message = "You can check in now"
	}

	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, attendance.StoreError("list attendance", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetDailySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailySummary(ctx context.Context, req attendance.DailySummaryRequest) (attendance.DailySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailySummaryResponse{}, err
	}

	date := shift.FormatDate(s.localNow())
	if req.Date != nil && *req.Date != "" {
		date = *req.Date
	}

	total, err := s.employeeRepo.CountActive(ctx)
	if err != nil {
		return attendance.DailySummaryResponse{}, attendance.StoreError("count employees", err)
	}
	counts, err := s.attendanceRepo.CountByStatus(ctx, date)
	if err != nil {
		return attendance.DailySummaryResponse{}, attendance.StoreError("count attendance", err)
	}

	resp := attendance.DailySummaryResponse{
		Date:           date,
		TotalEmployees: total,
		Present:        counts[attendance.StatusPresent],
		Late:           counts[attendance.StatusLate],
		Absent:         counts[attendance.StatusAbsent],
	}
	resp.NotRecorded = max(0, total-resp.Present-resp.Late-resp.Absent)
	return resp, nil
}

func (s *AttendanceServiceImpl) loadEmployee(ctx context.Context, id string) (employee.Employee, *shift.Shift, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, nil, err
	}
	if err != nil {
		return employee.Employee{}, nil, s.storeFailure("get employee", id, err)
	}

	sh, err := emp.Shift()
	if err != nil {
		return employee.Employee{}, nil, fmt.Errorf("%w: %w", employee.ErrInvalidShift, err)
	}
	return emp, sh, nil
}

func (s *AttendanceServiceImpl) storeFailure(op, employeeID string, err error) error {
	slog.Error("Attendance store failure", "op", op, "employee_id", employeeID, "error", err)
	return attendance.StoreError(op, err)
}

func (s *AttendanceServiceImpl) publish(name string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(sse.TopicAttendance, sse.Event{Event: name, Data: data})
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func mapRecordToResponse(record attendance.Record) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                    record.ID,
		EmployeeID:            record.EmployeeID,
		EmployeeName:          record.EmployeeName,
		Date:                  record.Date,
		CheckInTime:           timePtrToString(record.CheckInTime),
		CheckOutTime:          timePtrToString(record.CheckOutTime),
		Status:                record.Status,
		LateMinutes:           record.LateMinutes,
		EarlyDepartureMinutes: record.EarlyDepartureMinutes,
		IPAddress:             record.IPAddress,
	}
}
