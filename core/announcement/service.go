package announcement

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/kelasi/core/course"
)

var ErrNotFound = errors.New("announcement not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		QueryAnnouncementsByCourse(ctx context.Context, courseID string) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, courseID string, na NewAnnouncement, curUserID string) (Announcement, error)
		GetByID(ctx context.Context, id, curUserID string) (Announcement, error)
		QueryByCourse(ctx context.Context, courseID, curUserID string) ([]Announcement, error)
		Update(ctx context.Context, id string, ua UpdateAnnouncement, curUserID string) (Announcement, error)
		Delete(ctx context.Context, id, curUserID string) error
	}

	service struct {
		repo    Repository
		crsRepo course.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, crsRepo course.Repository) Service {
	return &service{repo: repo, crsRepo: crsRepo}
}

func (svc *service) Create(ctx context.Context, courseID string, na NewAnnouncement, curUserID string) (Announcement, error) {
	crs, err := svc.crsRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Announcement{}, err
	}
	if err = course.RequireOwner(curUserID, crs); err != nil {
		return Announcement{}, err
	}

	now := time.Now().UTC()
	ann := Announcement{
		CourseID:   crs.ID,
		Title:      na.Title,
		Content:    na.Content,
		PostedByID: curUserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

func (svc *service) GetByID(ctx context.Context, id, curUserID string) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if err = svc.requireOwner(ctx, ann, curUserID); err != nil {
		return Announcement{}, err
	}
	return ann, nil
}

func (svc *service) QueryByCourse(ctx context.Context, courseID, curUserID string) ([]Announcement, error) {
	crs, err := svc.crsRepo.GetCourseByIDWithStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err = course.RequireParticipant(curUserID, crs); err != nil {
		return nil, err
	}
	return svc.repo.QueryAnnouncementsByCourse(ctx, crs.ID)
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAnnouncement, curUserID string) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if err = svc.requireOwner(ctx, ann, curUserID); err != nil {
		return Announcement{}, err
	}

	ann.Title = ua.Title
	ann.Content = ua.Content
	ann.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, ann)
}

func (svc *service) Delete(ctx context.Context, id, curUserID string) error {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.requireOwner(ctx, ann, curUserID); err != nil {
		return err
	}
	return svc.repo.DeleteAnnouncementsByID(ctx, ann.ID)
}

// requireOwner walks announcement -> course -> professor.
func (svc *service) requireOwner(ctx context.Context, ann Announcement, curUserID string) error {
	crs, err := svc.crsRepo.GetCourseByID(ctx, ann.CourseID)
	if err != nil {
		return err
	}
	return course.RequireOwner(curUserID, crs)
}
