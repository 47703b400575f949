package attendance

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)

var AllStatuses = []string{StatusPresent, StatusAbsent, StatusExcused}

type (
	// Attendance records a student's presence for one course session.
	// At most one record exists per (session, student) pair.
	Attendance struct {
		ID           string      `json:"id"`
		SessionID    string      `json:"session_id"`
		StudentID    string      `json:"student_id"`
		Status       string      `json:"status"`
		ExcuseReason null.String `json:"excuse_reason,omitempty"`
		CreatedAt    time.Time   `json:"created_at,omitempty"`
		UpdatedAt    time.Time   `json:"updated_at,omitempty"`
	}

	// UpdateAttendance is used by a professor to override a record's status.
	UpdateAttendance struct {
		Status       string      `json:"status" validate:"required,oneof=present absent excused"`
		ExcuseReason null.String `json:"excuse_reason"`
	}
)

func (ua *UpdateAttendance) Validate(ctx context.Context) error {
	ua.Status = core.CleanString(ua.Status, true)
	if ua.ExcuseReason.Valid {
		ua.ExcuseReason = null.StringFrom(core.CleanString(ua.ExcuseReason.String))
	}
	return core.Validate.StructCtx(ctx, ua)
}
