package course_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
)

var joinCodeRx = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func setup(t *testing.T) (course.Service, user.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return course.NewService(dummydb.NewCourseRepository(db)), dummydb.NewUserRepository(db)
}

func mustCreateUser(t *testing.T, repo user.Repository, role string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), user.User{
		FirstName: "Test", LastName: role, Email: role + "@kelasi.test", Role: role,
	})
	require.NoError(t, err)
	return usr
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	prof := mustCreateUser(t, usrRepo, user.RoleProfessor)
	stu := mustCreateUser(t, usrRepo, user.RoleStudent)

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Algorithms"}, prof)
	require.NoError(t, err)
	assert.Equal(t, prof.ID, crs.ProfessorID)
	assert.Regexp(t, joinCodeRx, crs.JoinCode)

	other, err := svc.Create(ctx, course.NewCourse{Name: "Databases"}, prof)
	require.NoError(t, err)
	assert.NotEqual(t, crs.JoinCode, other.JoinCode)

	_, err = svc.Create(ctx, course.NewCourse{Name: "Nope"}, stu)
	assert.Equal(t, course.ErrNotProfessor, err)
}

func TestServiceJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	prof := mustCreateUser(t, usrRepo, user.RoleProfessor)
	stu := mustCreateUser(t, usrRepo, user.RoleStudent)

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Algorithms"}, prof)
	require.NoError(t, err)

	joined, err := svc.JoinByCode(ctx, crs.JoinCode, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, crs.ID, joined.ID)
	assert.Contains(t, joined.StudentIDs, stu.ID)

	_, err = svc.JoinByCode(ctx, crs.JoinCode, stu.ID)
	assert.Equal(t, course.ErrAlreadyEnrolled, err)

	_, err = svc.JoinByCode(ctx, "ZZZZZZ", stu.ID)
	assert.Equal(t, course.ErrNotFound, err)

	require.NoError(t, svc.Leave(ctx, crs.ID, stu.ID))
	assert.Equal(t, course.ErrNotEnrolled, svc.Leave(ctx, crs.ID, stu.ID))
}

func TestServiceAccess(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	prof := mustCreateUser(t, usrRepo, user.RoleProfessor)
	stu := mustCreateUser(t, usrRepo, user.RoleStudent)
	outsider := mustCreateUser(t, usrRepo, user.RoleStudent)

	crs, err := svc.Create(ctx, course.NewCourse{Name: "Algorithms"}, prof)
	require.NoError(t, err)
	_, err = svc.JoinByCode(ctx, crs.JoinCode, stu.ID)
	require.NoError(t, err)

	// members can read
	_, err = svc.GetByID(ctx, crs.ID, prof.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, crs.ID, stu.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, crs.ID, outsider.ID)
	assert.Equal(t, course.ErrNotCourseMember, err)

	// only the professor can mutate
	_, err = svc.Update(ctx, crs.ID, course.UpdateCourse{Name: "Algo II"}, stu.ID)
	assert.Equal(t, course.ErrNotCourseOwner, err)
	updated, err := svc.Update(ctx, crs.ID, course.UpdateCourse{Name: "Algo II"}, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algo II", updated.Name)

	assert.Equal(t, course.ErrNotCourseOwner, svc.Delete(ctx, crs.ID, stu.ID))
	require.NoError(t, svc.Delete(ctx, crs.ID, prof.ID))
	_, err = svc.GetByID(ctx, crs.ID, prof.ID)
	assert.Equal(t, course.ErrNotFound, err)
}
