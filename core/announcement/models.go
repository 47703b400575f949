package announcement

import (
	"time"

	"github.com/trezcool/kelasi/core"
)

type Announcement struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	PostedByID string    `json:"posted_by_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return core.Validate.Struct(na)
}

// UpdateAnnouncement defines what information may be provided to modify an existing Announcement.
type UpdateAnnouncement struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (ua *UpdateAnnouncement) Validate(orig Announcement) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if content := core.CleanString(ua.Content); content != "" {
		ua.Content = content
	} else {
		ua.Content = orig.Content
	}
	return core.Validate.Struct(ua)
}
