package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

const MarkAbsentJobName = "mark_absent_employees"

// AbsenceJobs runs the absence sweep on a schedule.
type AbsenceJobs struct {
	absenceService attendance.AbsenceService
}

func NewAbsenceJobs(absenceService attendance.AbsenceService) *AbsenceJobs {
	return &AbsenceJobs{absenceService: absenceService}
}

func (j *AbsenceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob(MarkAbsentJobName, spec, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees sweeps every date whose shifts have ended.
func (j *AbsenceJobs) MarkAbsentEmployees(ctx context.Context) error {
	slog.Info("Cron: Starting mark absent employees job")

	result, err := j.absenceService.SweepAbsences(ctx, attendance.SweepRequest{})
	if err != nil {
		return fmt.Errorf("failed to sweep absences: %w", err)
	}

	slog.Info("Cron: Marked absent employees",
		"count", result.MarkedAbsent,
		"dates", result.Dates,
		"already_recorded", result.AlreadyRecorded,
		"skipped_shift_not_ended", result.SkippedShiftNotEnded)
	return nil
}
