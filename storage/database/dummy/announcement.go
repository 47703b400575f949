package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/announcement"
)

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ann.ID = uuid.New().String()
	repo.db.announcements[ann.ID] = &ann
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if ann, ok := repo.db.announcements[id]; ok {
		return *ann, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncementsByCourse(_ context.Context, courseID string) ([]announcement.Announcement, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var anns []announcement.Announcement
	for _, ann := range repo.db.announcements {
		if ann.CourseID == courseID {
			anns = append(anns, *ann)
		}
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.announcements[ann.ID]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	orig.Title = ann.Title
	orig.Content = ann.Content
	orig.UpdatedAt = ann.UpdatedAt
	return *orig, nil
}

func (repo *announcementRepository) DeleteAnnouncementsByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.announcements, id)
	}
	return nil
}
