package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/repository"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// ProfileService handles the first-login profile setup step.
type ProfileService struct {
	profiles    repository.ProfileRepository
	departments repository.DepartmentRepository
	attachments *AttachmentService
	validate    *validator.Validate
}

// NewProfileService constructs the service.
func NewProfileService(profiles repository.ProfileRepository, departments repository.DepartmentRepository, attachments *AttachmentService, validate *validator.Validate) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{
		profiles:    profiles,
		departments: departments,
		attachments: attachments,
		validate:    validate,
	}
}

// SetupInput describes the profile completion payload.
type SetupInput struct {
	FullName     string `validate:"required,max=120"`
	DepartmentID string `validate:"required,uuid4"`
	StudentID    string `validate:"required,max=40"`
	Phone        string `validate:"omitempty,max=20"`
	Avatar       *Upload
}

// CompleteSetup fills in the profile created at registration and marks it
// complete. Role and email stay untouched.
func (s *ProfileService) CompleteSetup(ctx context.Context, actor domain.Actor, input SetupInput) (*domain.Profile, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.StudentID = strings.TrimSpace(input.StudentID)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("full name, department and student id are required", nil)
	}

	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("department", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !dept.IsActive {
		return nil, apperrors.NewValidationError("department is not active", nil)
	}

	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	profile.FullName = input.FullName
	profile.DepartmentID = &input.DepartmentID
	profile.StudentID = &input.StudentID
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		profile.Phone = &phone
	}

	if input.Avatar != nil {
		url, err := s.attachments.StoreAvatar(ctx, actor.ID, *input.Avatar)
		if err != nil {
			return nil, err
		}
		profile.AvatarURL = &url
	}

	if err := s.profiles.CompleteSetup(ctx, profile); err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	profile.IsComplete = true
	return profile, nil
}

// Get returns the stored profile for the actor.
func (s *ProfileService) Get(ctx context.Context, actorID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("profile", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}
