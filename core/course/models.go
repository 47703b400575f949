package course

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
)

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MaxMissed   null.Int  `json:"max_missed"`
	JoinCode    string    `json:"join_code"`
	ProfessorID string    `json:"professor_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC

	// StudentIDs is only populated by the *WithStudents repository lookups.
	StudentIDs []string `json:"student_ids,omitempty"`
}

func (c *Course) IsOwnedBy(userID string) bool { return c.ProfessorID == userID }

func (c *Course) HasStudent(userID string) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name      string   `json:"name" validate:"required"`
	MaxMissed null.Int `json:"max_missed"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name      string   `json:"name"`
	MaxMissed null.Int `json:"max_missed"`
}

func (uc *UpdateCourse) Validate(origCrs Course) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}
	return core.Validate.Struct(uc)
}

type JoinCourse struct {
	JoinCode string `json:"join_code" validate:"required,len=6,alphanum"`
}

func (jc *JoinCourse) Validate() error {
	jc.JoinCode = core.CleanString(jc.JoinCode)
	return core.Validate.Struct(jc)
}

type Session struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Label       string    `json:"label"`
	Date        time.Time `json:"date"`
	IsCancelled bool      `json:"is_cancelled"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewSession contains information needed to create a new Session.
type NewSession struct {
	Label string    `json:"label" validate:"required"`
	Date  time.Time `json:"date"`
}

func (ns *NewSession) Validate() error {
	ns.Label = core.CleanString(ns.Label)
	return core.Validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an existing Session.
type UpdateSession struct {
	Label       string    `json:"label"`
	Date        time.Time `json:"date"`
	IsCancelled *bool     `json:"is_cancelled"`
}

func (us *UpdateSession) Validate(origSess Session) error {
	if label := core.CleanString(us.Label); label != "" {
		us.Label = label
	} else {
		us.Label = origSess.Label
	}
	if us.Date.IsZero() {
		us.Date = origSess.Date
	}
	if us.IsCancelled == nil {
		us.IsCancelled = &origSess.IsCancelled
	}
	return core.Validate.Struct(us)
}
