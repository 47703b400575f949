package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	crs.ID = uuid.New().String()
	crs.StudentIDs = nil
	repo.db.courses[crs.ID] = &crs
	repo.db.enrollments[crs.ID] = make(map[string]bool)
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByIDWithStudents(_ context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	crs, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	res := *crs
	res.StudentIDs = repo.db.studentIDs(id)
	return res, nil
}

func (repo *courseRepository) GetCourseByJoinCode(_ context.Context, joinCode string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.JoinCode == joinCode {
			res := *crs
			res.StudentIDs = repo.db.studentIDs(crs.ID)
			return res, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByUser(_ context.Context, userID string) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var courses []course.Course
	for _, crs := range repo.db.courses {
		if crs.ProfessorID == userID || repo.db.enrollments[crs.ID][userID] {
			res := *crs
			res.StudentIDs = repo.db.studentIDs(crs.ID)
			courses = append(courses, res)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Name = crs.Name
	orig.MaxMissed = crs.MaxMissed
	orig.UpdatedAt = crs.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) AddStudent(_ context.Context, courseID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return course.ErrNotFound
	}
	if repo.db.enrollments[courseID] == nil {
		repo.db.enrollments[courseID] = make(map[string]bool)
	}
	repo.db.enrollments[courseID][studentID] = true
	return nil
}

func (repo *courseRepository) RemoveStudent(_ context.Context, courseID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.enrollments[courseID], studentID)
	return nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.courses, id)
		delete(repo.db.enrollments, id)
		for sessID, sess := range repo.db.sessions {
			if sess.CourseID == id {
				delete(repo.db.sessions, sessID)
			}
		}
		for annID, ann := range repo.db.announcements {
			if ann.CourseID == id {
				delete(repo.db.announcements, annID)
			}
		}
	}
	return nil
}
