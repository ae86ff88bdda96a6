package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

var (
	cairo        = time.FixedZone("Africa/Cairo", 2*60*60)
	errStoreDown = errors.New("connection refused")
)

// cairoClock returns a clock fixed at the given Cairo wall time on 2026-10-15
// (a Thursday), reported in UTC so services must convert it.
func cairoClock(dayOffset, hour, minute int) func() time.Time {
	instant := time.Date(2026, 10, 15+dayOffset, hour, minute, 0, 0, cairo).UTC()
	return func() time.Time { return instant }
}

func strPtr(s string) *string { return &s }

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Record
	nextID  int
	writes  int

	getErr         error
	listErr        error
	absenceErr     error
	forceDuplicate bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Record)}
}

func recordKey(employeeID, date string) string {
	return employeeID + "|" + date
}

func (f *fakeAttendanceRepo) seed(record attendance.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record.ID = fmt.Sprintf("att-%d", f.nextID)
	f.records[recordKey(record.EmployeeID, record.Date)] = &record
}

func (f *fakeAttendanceRepo) find(employeeID, date string) *attendance.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordKey(employeeID, date)]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.find(employeeID, date), nil
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(record.EmployeeID, record.Date)
	if _, exists := f.records[key]; exists || f.forceDuplicate {
		return attendance.Record{}, attendance.ErrDuplicateAttendance
	}
	f.nextID++
	record.ID = fmt.Sprintf("att-%d", f.nextID)
	f.records[key] = &record
	f.writes++
	return record, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, existing := range f.records {
		if existing.ID == record.ID {
			copied := record
			f.records[key] = &copied
			f.writes++
			return nil
		}
	}
	return attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) ListByDateForEmployees(ctx context.Context, date string, employeeIDs []string) ([]attendance.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Record
	for _, id := range employeeIDs {
		if record, ok := f.records[recordKey(id, date)]; ok {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) CreateAbsences(ctx context.Context, date string, employeeIDs []string) ([]string, error) {
	if f.absenceErr != nil {
		return nil, f.absenceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var inserted []string
	for _, id := range employeeIDs {
		key := recordKey(id, date)
		if _, exists := f.records[key]; exists {
			continue
		}
		f.nextID++
		f.records[key] = &attendance.Record{
			ID:         fmt.Sprintf("att-%d", f.nextID),
			EmployeeID: id,
			Date:       date,
			Status:     attendance.StatusAbsent,
		}
		f.writes++
		inserted = append(inserted, id)
	}
	return inserted, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	f.mu.Lock()
	var all []attendance.Record
	for _, record := range f.records {
		if filter.Date != nil && record.Date != *filter.Date {
			continue
		}
		if filter.Status != nil && string(record.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		all = append(all, *record)
	}
	f.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date > all[j].Date
		}
		return all[i].EmployeeID < all[j].EmployeeID
	})
	total := int64(len(all))
	start := min((filter.Page-1)*filter.Limit, len(all))
	end := min(start+filter.Limit, len(all))
	return all[start:end], total, nil
}

func (f *fakeAttendanceRepo) CountByStatus(ctx context.Context, date string) (map[attendance.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[attendance.Status]int)
	for _, record := range f.records {
		if record.Date == date {
			counts[record.Status]++
		}
	}
	return counts, nil
}

func (f *fakeAttendanceRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeEmployeeRepo filters on role and active only; off days are left to the service.
type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	listErr   error
}

func newFakeEmployeeRepo(employees ...employee.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, emp := range employees {
		if emp.Role == "" {
			emp.Role = employee.RoleEmployee
		}
		emp.Active = true
		repo.employees[emp.ID] = emp
	}
	return repo
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListExpectedOn(ctx context.Context, weekday string) ([]employee.Employee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Role == employee.RoleEmployee && emp.Active {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return out, nil
}

func (f *fakeEmployeeRepo) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, emp := range f.employees {
		if emp.Role == employee.RoleEmployee && emp.Active {
			n++
		}
	}
	return n, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (f *fakePublisher) Publish(topic string, event sse.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.Topic = topic
	f.events = append(f.events, event)
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Event)
	}
	return out
}
