package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	alice := setup.InsertProfile(t, "Alice", "employee", strPtr("09:00"), strPtr("17:00"), nil)
	setup.InsertProfile(t, "Eve", "employee", strPtr("09:00"), strPtr("17:00"), strPtr("Thursday"))
	setup.InsertProfile(t, "Root", "admin", nil, nil, nil)

	got, err := repo.GetByID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	require.NotNil(t, got.ShiftStart)
	assert.Equal(t, "09:00:00", *got.ShiftStart)
	s, err := got.Shift()
	require.NoError(t, err)
	assert.Equal(t, "09:00-17:00", s.String())

	expected, err := repo.ListExpectedOn(ctx, "thursday")
	require.NoError(t, err)
	require.Len(t, expected, 1)
	assert.Equal(t, alice, expected[0].ID)

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = repo.GetByID(ctx, "0192d2a0-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository_CreateUpdateAndUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	emp := setup.InsertProfile(t, "Alice", "employee", strPtr("09:00"), strPtr("17:00"), nil)

	missing, err := repo.GetByEmployeeAndDate(ctx, emp, "2026-10-15")
	require.NoError(t, err)
	assert.Nil(t, missing)

	checkIn := time.Date(2026, 10, 15, 9, 15, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Record{
		EmployeeID:  emp,
		Date:        "2026-10-15",
		CheckInTime: &checkIn,
		Status:      attendance.StatusLate,
		LateMinutes: 15,
		IPAddress:   strPtr("10.0.0.7"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, attendance.Record{EmployeeID: emp, Date: "2026-10-15", CheckInTime: &checkIn, Status: attendance.StatusPresent})
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)

	checkOut := checkIn.Add(7 * time.Hour)
	created.CheckOutTime = &checkOut
	created.EarlyDepartureMinutes = 45
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByEmployeeAndDate(ctx, emp, "2026-10-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2026-10-15", got.Date)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 45, got.EarlyDepartureMinutes)
	require.NotNil(t, got.CheckOutTime)
	assert.True(t, checkOut.Equal(*got.CheckOutTime))
}

func TestAttendanceRepository_CreateAbsencesIsIdempotent(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	a := setup.InsertProfile(t, "Alice", "employee", nil, nil, nil)
	b := setup.InsertProfile(t, "Bilal", "employee", nil, nil, nil)

	inserted, err := repo.CreateAbsences(ctx, "2026-10-15", []string{a, b})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, inserted)

	inserted, err = repo.CreateAbsences(ctx, "2026-10-15", []string{a, b})
	require.NoError(t, err)
	assert.Empty(t, inserted)

	existing, err := repo.ListByDateForEmployees(ctx, "2026-10-15", []string{a})
	require.NoError(t, err)
	require.Len(t, existing, 1)
	assert.Equal(t, attendance.StatusAbsent, existing[0].Status)
	assert.Nil(t, existing[0].CheckInTime)

	counts, err := repo.CountByStatus(ctx, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[attendance.StatusAbsent])

	records, total, err := repo.List(ctx, attendance.AttendanceFilter{Status: strPtr("absent"), Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].EmployeeName)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	emp := setup.InsertProfile(t, "Alice", "employee", nil, nil, nil)

	err := postgresql.WithTransaction(ctx, setup.DB, func(txCtx context.Context) error {
		if _, err := repo.CreateAbsences(txCtx, "2026-10-15", []string{emp}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetByEmployeeAndDate(ctx, emp, "2026-10-15")
	require.NoError(t, err)
	assert.Nil(t, got)
}
