package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// one record per (session, student), like the unique index in postgres
	for _, existing := range repo.db.attendances {
		if existing.SessionID == att.SessionID && existing.StudentID == att.StudentID {
			return *existing, nil
		}
	}

	now := time.Now().UTC()
	att.ID = uuid.New().String()
	att.CreatedAt = now
	att.UpdatedAt = now
	repo.db.attendances[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceByID(_ context.Context, id string) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if att, ok := repo.db.attendances[id]; ok {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetAttendanceBySessionAndStudent(_ context.Context, sessionID, studentID string) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, att := range repo.db.attendances {
		if att.SessionID == sessionID && att.StudentID == studentID {
			return *att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryAttendancesBySession(_ context.Context, sessionID string) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var atts []attendance.Attendance
	for _, att := range repo.db.attendances {
		if att.SessionID == sessionID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].CreatedAt.Before(atts[j].CreatedAt) })
	return atts, nil
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att attendance.Attendance) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.attendances[att.ID]
	if !ok {
		return attendance.ErrNotFound
	}
	orig.Status = att.Status
	orig.ExcuseReason = att.ExcuseReason
	orig.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *attendanceRepository) DeleteAttendancesByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.attendances, id)
	}
	return nil
}
