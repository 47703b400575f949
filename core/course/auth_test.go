package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireOwner(t *testing.T) {
	crs := Course{ID: "c1", ProfessorID: "prof", StudentIDs: []string{"stu"}}

	assert.NoError(t, RequireOwner("prof", crs))
	assert.Equal(t, ErrNotCourseOwner, RequireOwner("stu", crs))
	assert.Equal(t, ErrNotCourseOwner, RequireOwner("other", crs))
	assert.Equal(t, ErrNotCourseOwner, RequireOwner("", crs))
}

func TestRequireParticipant(t *testing.T) {
	crs := Course{ID: "c1", ProfessorID: "prof", StudentIDs: []string{"stu"}}

	assert.NoError(t, RequireParticipant("prof", crs))
	assert.NoError(t, RequireParticipant("stu", crs))
	assert.Equal(t, ErrNotCourseMember, RequireParticipant("other", crs))
	assert.Equal(t, ErrNotCourseMember, RequireParticipant("", crs))
}
