package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/domain"
)

func newProfileFixture() (*ProfileService, *mockProfileRepo, *mockStore) {
	profiles := &mockProfileRepo{profiles: map[string]domain.Profile{
		"stu-1": {ID: "stu-1", Email: "stu1@srmist.edu.in", FullName: "Temp", Role: domain.RoleStudent},
	}}
	departments := &mockDepartmentRepo{departments: map[string]domain.Department{
		deptCSE: {ID: deptCSE, Name: "Computer Science", Code: "CSE", IsActive: true},
		deptECE: {ID: deptECE, Name: "Electronics", Code: "ECE", IsActive: false},
	}}
	store := &mockStore{}
	svc := NewProfileService(profiles, departments, NewAttachmentService(store, zap.NewNop()), nil)
	return svc, profiles, store
}

func TestCompleteSetup(t *testing.T) {
	svc, profiles, _ := newProfileFixture()

	profile, err := svc.CompleteSetup(context.Background(), studentActor("stu-1"), SetupInput{
		FullName:     "Asha Kumar",
		DepartmentID: deptCSE,
		StudentID:    "RA2111003010001",
		Phone:        "9876543210",
	})
	require.NoError(t, err)
	assert.True(t, profile.IsComplete)
	assert.Equal(t, "Asha Kumar", profile.FullName)
	require.NotNil(t, profile.DepartmentID)
	assert.Equal(t, deptCSE, *profile.DepartmentID)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "9876543210", *profile.Phone)
	assert.Equal(t, []string{"stu-1"}, profiles.updated)

	// Role and email stay untouched.
	assert.Equal(t, domain.RoleStudent, profile.Role)
	assert.Equal(t, "stu1@srmist.edu.in", profile.Email)
}

func TestCompleteSetupValidation(t *testing.T) {
	svc, _, _ := newProfileFixture()
	actor := studentActor("stu-1")

	_, err := svc.CompleteSetup(context.Background(), actor, SetupInput{
		DepartmentID: deptCSE,
		StudentID:    "RA1",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "missing full name")

	_, err = svc.CompleteSetup(context.Background(), actor, SetupInput{
		FullName:     "Asha Kumar",
		DepartmentID: deptECE,
		StudentID:    "RA1",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "inactive department")
}

func TestCompleteSetupAvatar(t *testing.T) {
	svc, _, store := newProfileFixture()
	actor := studentActor("stu-1")

	profile, err := svc.CompleteSetup(context.Background(), actor, SetupInput{
		FullName:     "Asha Kumar",
		DepartmentID: deptCSE,
		StudentID:    "RA1",
		Avatar:       &Upload{FileName: "me.png", ContentType: "image/png", Data: []byte("x")},
	})
	require.NoError(t, err)
	require.NotNil(t, profile.AvatarURL)
	assert.Contains(t, *profile.AvatarURL, "avatars")
	assert.Len(t, store.uploads, 1)

	// Avatars take images only, even from the shared allow-list.
	_, err = svc.CompleteSetup(context.Background(), actor, SetupInput{
		FullName:     "Asha Kumar",
		DepartmentID: deptCSE,
		StudentID:    "RA1",
		Avatar:       &Upload{FileName: "marks.xlsx", Data: []byte("x")},
	})
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", domainCode(t, err))
}

func TestCompleteSetupAvatarUploadFailure(t *testing.T) {
	svc, _, store := newProfileFixture()
	store.err = errors.New("bucket unavailable")

	_, err := svc.CompleteSetup(context.Background(), studentActor("stu-1"), SetupInput{
		FullName:     "Asha Kumar",
		DepartmentID: deptCSE,
		StudentID:    "RA1",
		Avatar:       &Upload{FileName: "me.png", Data: []byte("x")},
	})
	assert.Equal(t, "STORAGE_FAILURE", domainCode(t, err))
}

func TestDepartmentListActiveWithoutCache(t *testing.T) {
	departments := &mockDepartmentRepo{departments: map[string]domain.Department{
		deptCSE: {ID: deptCSE, Name: "Computer Science", Code: "CSE", IsActive: true},
		deptECE: {ID: deptECE, Name: "Electronics", Code: "ECE", IsActive: false},
	}}
	svc := NewDepartmentService(departments, nil, zap.NewNop())

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "CSE", active[0].Code)
}
