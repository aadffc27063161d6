package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/events"
	"github.com/spec-kit/exam-portal/internal/policy"
	"github.com/spec-kit/exam-portal/internal/repository"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// RequestService coordinates the examination request lifecycle. It is the
// only writer of request status.
type RequestService struct {
	requests    repository.RequestRepository
	responses   repository.ResponseRepository
	departments repository.DepartmentRepository
	profiles    repository.ProfileRepository
	attachments *AttachmentService
	dispatcher  events.Dispatcher
	validate    *validator.Validate
	logger      *zap.Logger
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo    repository.RequestRepository
	ResponseRepo   repository.ResponseRepository
	DepartmentRepo repository.DepartmentRepository
	ProfileRepo    repository.ProfileRepository
	Attachments    *AttachmentService
	Dispatcher     events.Dispatcher
	Validate       *validator.Validate
	Logger         *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	v := deps.Validate
	if v == nil {
		v = validator.New()
	}
	return &RequestService{
		requests:    deps.RequestRepo,
		responses:   deps.ResponseRepo,
		departments: deps.DepartmentRepo,
		profiles:    deps.ProfileRepo,
		attachments: deps.Attachments,
		dispatcher:  deps.Dispatcher,
		validate:    v,
		logger:      deps.Logger,
	}
}

// CreateRequestInput describes a student submission.
type CreateRequestInput struct {
	Title        string                 `validate:"required,max=200"`
	Description  string                 `validate:"required"`
	RequestType  domain.RequestType     `validate:"required"`
	Priority     domain.RequestPriority `validate:"omitempty"`
	DepartmentID string                 `validate:"required,uuid4"`
	Attachment   *Upload
}

// CreateRequest files a new examination request for a student.
func (s *RequestService) CreateRequest(ctx context.Context, actor domain.Actor, input CreateRequestInput) (*domain.Request, error) {
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students can submit requests")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("title, description, request type and department are required", nil)
	}
	if !domain.ValidRequestType(input.RequestType) {
		return nil, apperrors.NewValidationError("unknown request type", map[string]any{"request_type": input.RequestType})
	}
	if input.Priority == "" {
		input.Priority = domain.RequestPriorityMedium
	}
	if !domain.ValidRequestPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
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

	var attachmentURLs []string
	if input.Attachment != nil {
		url, err := s.attachments.StoreRequestAttachment(ctx, actor.ID, *input.Attachment)
		if err != nil {
			return nil, err
		}
		attachmentURLs = []string{url}
	}

	req := &domain.Request{
		ExternalKey:  generateRequestKey(),
		StudentID:    actor.ID,
		DepartmentID: input.DepartmentID,
		Title:        input.Title,
		Description:  input.Description,
		RequestType:  input.RequestType,
		Priority:     input.Priority,
		Status:       domain.RequestStatusPending,
		Attachments:  attachmentURLs,
	}
	if req.Attachments == nil {
		req.Attachments = []string{}
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		ActorID:   actor.ID,
		Payload: events.RequestCreatedPayload{
			ExternalKey:  req.ExternalKey,
			DepartmentID: req.DepartmentID,
			RequestType:  req.RequestType,
			Priority:     req.Priority,
			Title:        req.Title,
		},
	})
	return req, nil
}

// ListRequests returns requests visible to the actor, newest first. The
// status filter narrows within the actor's scope; super-admins are pinned to
// escalated requests regardless of the filter.
func (s *RequestService) ListRequests(ctx context.Context, actor domain.Actor, status *domain.RequestStatus, limit, offset int) ([]domain.Request, error) {
	scope := policy.VisibleScope(actor)
	if actor.Role == domain.RoleAdmin && scope.DepartmentID == nil {
		return nil, apperrors.NewForbidden("admin has no department assigned")
	}

	filter := repository.RequestFilter{
		StudentID:    scope.StudentID,
		DepartmentID: scope.DepartmentID,
		Status:       scope.Status,
		Limit:        limit,
		Offset:       offset,
	}
	if filter.Status == nil && status != nil {
		if !domain.ValidRequestStatus(*status) {
			return nil, apperrors.NewValidationError("unknown status filter", nil)
		}
		filter.Status = status
	}

	result, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetRequest fetches one request with its response thread, enforcing the
// visibility policy.
func (s *RequestService) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.Request, []domain.Response, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("request", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !policy.CanView(actor, req) {
		return nil, nil, apperrors.NewForbidden("you are not allowed to view this request")
	}

	responses, err := s.responses.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return req, responses, nil
}

// TransitionInput describes a lifecycle transition attempt.
type TransitionInput struct {
	RequestID    string
	Target       domain.RequestStatus
	ResponseText string
	Attachment   *Upload
}

// ApplyTransition moves a request to a terminal status as a single logical
// unit: store the attachment, append the audit response, flip the status
// with an atomic conditional update, and enqueue the student notification.
// Validation and authorization are checked before any mutation.
func (s *RequestService) ApplyTransition(ctx context.Context, actor domain.Actor, input TransitionInput) (*domain.Request, error) {
	responseType, ok := domain.ResponseTypeFor(input.Target)
	if !ok {
		return nil, apperrors.NewValidationError("unknown target status", map[string]any{"status": input.Target})
	}

	text := strings.TrimSpace(input.ResponseText)
	if text == "" {
		return nil, apperrors.NewValidationError("response text is required", nil)
	}

	req, err := s.requests.GetByID(ctx, input.RequestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("request", nil)
		}
		return nil, apperrors.MapError(err)
	}

	switch policy.CanTransition(actor, req, input.Target) {
	case policy.Allowed:
	case policy.DeniedTransition:
		return nil, apperrors.NewConflict("someone already handled this request", map[string]any{"status": req.Status})
	case policy.DeniedDepartment:
		return nil, apperrors.NewForbidden("request belongs to another department")
	default:
		return nil, apperrors.NewForbidden("your role cannot perform this transition")
	}

	var attachmentURLs []string
	if input.Attachment != nil {
		url, err := s.attachments.StoreResponseAttachment(ctx, actor.ID, *input.Attachment)
		if err != nil {
			// Abort before any record write.
			return nil, err
		}
		attachmentURLs = []string{url}
	}
	if attachmentURLs == nil {
		attachmentURLs = []string{}
	}

	now := time.Now()
	update := repository.TransitionUpdate{
		RequestID:       req.ID,
		ExpectedStatus:  req.Status,
		NewStatus:       input.Target,
		AssignedAdminID: actor.ID,
	}
	if input.Target == domain.RequestStatusResolved || input.Target == domain.RequestStatusTerminated {
		update.ResolutionNotes = &text
		update.ResolvedAt = &now
	}

	response := &domain.Response{
		RequestID:    req.ID,
		ResponderID:  actor.ID,
		ResponseText: text,
		ResponseType: responseType,
		Attachments:  attachmentURLs,
	}

	applied, err := s.requests.TransitionWithResponse(ctx, update, response)
	if err != nil {
		// An already-uploaded attachment stays behind as an orphaned blob;
		// accepted cost, never compensated with a delete.
		return nil, apperrors.NewPersistenceFailure(err)
	}
	if !applied {
		return nil, apperrors.NewConflict("someone already handled this request", map[string]any{"status": req.Status})
	}

	oldStatus := req.Status
	req.Status = input.Target
	req.AssignedAdminID = &actor.ID
	if update.ResolutionNotes != nil {
		req.ResolutionNotes = update.ResolutionNotes
		req.ResolvedAt = update.ResolvedAt
	}

	// The transition is already durable; a missing student row only costs
	// the notification, so log instead of failing.
	student, err := s.profiles.GetByID(ctx, req.StudentID)
	if err != nil {
		s.logger.Error("failed to load student for notification",
			zap.String("request_id", req.ID),
			zap.Error(err))
	} else {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestTransitioned,
			RequestID: req.ID,
			ActorID:   actor.ID,
			Payload: events.RequestTransitionedPayload{
				OldStatus:    oldStatus,
				NewStatus:    req.Status,
				Notes:        text,
				RequestTitle: req.Title,
				ExternalKey:  req.ExternalKey,
				StudentEmail: student.Email,
				StudentName:  student.FullName,
				Attachments:  attachmentURLs,
			},
		})
	}

	s.logger.Info("request transitioned",
		zap.String("request_id", req.ID),
		zap.String("actor_id", actor.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(req.Status)))
	return req, nil
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// generateRequestKey builds the user-facing request key shown in emails and
// the UI: REQ-<base36 millis>-<4 random chars>.
func generateRequestKey() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "REQ-" + ts + "-" + random
}
