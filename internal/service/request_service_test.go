package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/events"
	"github.com/spec-kit/exam-portal/internal/repository"
	"github.com/spec-kit/exam-portal/internal/storage"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

const (
	deptCSE = "11111111-1111-4111-8111-111111111111"
	deptECE = "22222222-2222-4222-8222-222222222222"
)

type mockRequestRepo struct {
	requests       map[string]domain.Request
	lastFilter     repository.RequestFilter
	lastUpdate     repository.TransitionUpdate
	lastResponse   *domain.Response
	transitionHits int
	denyTransition bool
	err            error
}

func (m *mockRequestRepo) Create(ctx context.Context, req *domain.Request) error {
	if m.err != nil {
		return m.err
	}
	if m.requests == nil {
		m.requests = make(map[string]domain.Request)
	}
	if req.ID == "" {
		req.ID = "req-generated"
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	if m.err != nil {
		return nil, m.err
	}
	if req, ok := m.requests[id]; ok {
		return &req, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Request, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req)
	}
	return out, nil
}

func (m *mockRequestRepo) TransitionWithResponse(ctx context.Context, update repository.TransitionUpdate, response *domain.Response) (bool, error) {
	m.transitionHits++
	m.lastUpdate = update
	if m.err != nil {
		return false, m.err
	}
	if m.denyTransition {
		return false, nil
	}
	req, ok := m.requests[update.RequestID]
	if !ok || req.Status != update.ExpectedStatus {
		return false, nil
	}
	req.Status = update.NewStatus
	req.AssignedAdminID = &update.AssignedAdminID
	if update.ResolutionNotes != nil {
		req.ResolutionNotes = update.ResolutionNotes
		req.ResolvedAt = update.ResolvedAt
	}
	m.requests[update.RequestID] = req
	response.ID = "resp-generated"
	m.lastResponse = response
	return true, nil
}

type mockResponseRepo struct {
	responses []domain.Response
}

func (m *mockResponseRepo) Create(ctx context.Context, response *domain.Response) error {
	m.responses = append(m.responses, *response)
	return nil
}

func (m *mockResponseRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.Response, error) {
	var out []domain.Response
	for _, resp := range m.responses {
		if resp.RequestID == requestID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type mockDepartmentRepo struct {
	departments map[string]domain.Department
}

func (m *mockDepartmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	if dept, ok := m.departments[id]; ok {
		return &dept, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockDepartmentRepo) ListActive(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	for _, dept := range m.departments {
		if dept.IsActive {
			out = append(out, dept)
		}
	}
	return out, nil
}

type mockProfileRepo struct {
	profiles map[string]domain.Profile
	updated  []string
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	if m.profiles == nil {
		m.profiles = make(map[string]domain.Profile)
	}
	if profile.ID == "" {
		profile.ID = "profile-generated"
	}
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockProfileRepo) CompleteSetup(ctx context.Context, profile *domain.Profile) error {
	m.updated = append(m.updated, profile.ID)
	m.profiles[profile.ID] = *profile
	return nil
}

type mockStore struct {
	uploads []string
	err     error
}

func (m *mockStore) Upload(ctx context.Context, bucket storage.Bucket, name, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	url := "https://files.example.edu/" + string(bucket) + "/" + name
	m.uploads = append(m.uploads, url)
	return url, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

type fixture struct {
	service    *RequestService
	requests   *mockRequestRepo
	responses  *mockResponseRepo
	profiles   *mockProfileRepo
	store      *mockStore
	dispatcher *recordingDispatcher
}

func newFixture() *fixture {
	requests := &mockRequestRepo{requests: make(map[string]domain.Request)}
	responses := &mockResponseRepo{}
	departments := &mockDepartmentRepo{departments: map[string]domain.Department{
		deptCSE: {ID: deptCSE, Name: "Computer Science", Code: "CSE", IsActive: true},
		deptECE: {ID: deptECE, Name: "Electronics", Code: "ECE", IsActive: false},
	}}
	profiles := &mockProfileRepo{profiles: map[string]domain.Profile{
		"stu-1": {ID: "stu-1", Email: "stu1@srmist.edu.in", FullName: "Asha Kumar", Role: domain.RoleStudent},
	}}
	store := &mockStore{}
	dispatcher := &recordingDispatcher{}

	svc := NewRequestService(RequestDependencies{
		RequestRepo:    requests,
		ResponseRepo:   responses,
		DepartmentRepo: departments,
		ProfileRepo:    profiles,
		Attachments:    NewAttachmentService(store, zap.NewNop()),
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
	})
	return &fixture{
		service:    svc,
		requests:   requests,
		responses:  responses,
		profiles:   profiles,
		store:      store,
		dispatcher: dispatcher,
	}
}

func studentActor(id string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleStudent}
}

func adminActor(id, dept string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleAdmin, DepartmentID: &dept}
}

func superAdminActor(id string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleSuperAdmin}
}

func seedRequest(f *fixture, status domain.RequestStatus) domain.Request {
	req := domain.Request{
		ID:           "req-1",
		ExternalKey:  "REQ-TEST-0001",
		StudentID:    "stu-1",
		DepartmentID: deptCSE,
		Title:        "Hall ticket missing",
		Description:  "My hall ticket never arrived.",
		RequestType:  domain.RequestTypeExamIssue,
		Priority:     domain.RequestPriorityHigh,
		Status:       status,
		Attachments:  []string{},
	}
	f.requests.requests[req.ID] = req
	return req
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestCreateRequest(t *testing.T) {
	f := newFixture()

	req, err := f.service.CreateRequest(context.Background(), studentActor("stu-1"), CreateRequestInput{
		Title:        "Hall ticket missing",
		Description:  "My hall ticket never arrived.",
		RequestType:  domain.RequestTypeExamIssue,
		DepartmentID: deptCSE,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, domain.RequestPriorityMedium, req.Priority, "priority defaults to medium")
	assert.True(t, strings.HasPrefix(req.ExternalKey, "REQ-"))
	assert.Empty(t, req.Attachments)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventRequestCreated, f.dispatcher.published[0].Type)
}

func TestCreateRequestRejectsNonStudents(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateRequest(context.Background(), adminActor("adm-1", deptCSE), CreateRequestInput{
		Title:        "t",
		Description:  "d",
		RequestType:  domain.RequestTypeOther,
		DepartmentID: deptCSE,
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture()
	actor := studentActor("stu-1")

	_, err := f.service.CreateRequest(context.Background(), actor, CreateRequestInput{
		Description:  "d",
		RequestType:  domain.RequestTypeOther,
		DepartmentID: deptCSE,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "missing title")

	_, err = f.service.CreateRequest(context.Background(), actor, CreateRequestInput{
		Title:        "t",
		Description:  "d",
		RequestType:  "unknown",
		DepartmentID: deptCSE,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "unknown request type")

	_, err = f.service.CreateRequest(context.Background(), actor, CreateRequestInput{
		Title:        "t",
		Description:  "d",
		RequestType:  domain.RequestTypeOther,
		DepartmentID: deptECE,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "inactive department")
}

func TestCreateRequestRejectsBadAttachmentBeforeUpload(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateRequest(context.Background(), studentActor("stu-1"), CreateRequestInput{
		Title:        "t",
		Description:  "d",
		RequestType:  domain.RequestTypeOther,
		DepartmentID: deptCSE,
		Attachment:   &Upload{FileName: "malware.exe", Data: []byte("x")},
	})
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", domainCode(t, err))
	assert.Empty(t, f.store.uploads, "nothing reaches the blob store")
	assert.Empty(t, f.requests.requests, "no record is written")
}

func TestCreateRequestStoresAttachment(t *testing.T) {
	f := newFixture()

	req, err := f.service.CreateRequest(context.Background(), studentActor("stu-1"), CreateRequestInput{
		Title:        "t",
		Description:  "d",
		RequestType:  domain.RequestTypeOther,
		DepartmentID: deptCSE,
		Attachment:   &Upload{FileName: "proof.pdf", ContentType: "application/pdf", Data: []byte("x")},
	})
	require.NoError(t, err)
	require.Len(t, req.Attachments, 1)
	assert.Contains(t, req.Attachments[0], "request-attachments")
}

func TestListRequestsScoping(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	_, err := f.service.ListRequests(context.Background(), studentActor("stu-1"), nil, 20, 0)
	require.NoError(t, err)
	require.NotNil(t, f.requests.lastFilter.StudentID)
	assert.Equal(t, "stu-1", *f.requests.lastFilter.StudentID)

	_, err = f.service.ListRequests(context.Background(), adminActor("adm-1", deptCSE), nil, 20, 0)
	require.NoError(t, err)
	require.NotNil(t, f.requests.lastFilter.DepartmentID)
	assert.Equal(t, deptCSE, *f.requests.lastFilter.DepartmentID)

	// Super-admins are pinned to escalated regardless of any filter.
	resolved := domain.RequestStatusResolved
	_, err = f.service.ListRequests(context.Background(), superAdminActor("sup-1"), &resolved, 20, 0)
	require.NoError(t, err)
	require.NotNil(t, f.requests.lastFilter.Status)
	assert.Equal(t, domain.RequestStatusEscalated, *f.requests.lastFilter.Status)
}

func TestListRequestsAdminWithoutDepartment(t *testing.T) {
	f := newFixture()

	_, err := f.service.ListRequests(context.Background(), domain.Actor{ID: "adm-1", Role: domain.RoleAdmin}, nil, 20, 0)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestGetRequestVisibility(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	req, _, err := f.service.GetRequest(context.Background(), studentActor("stu-1"), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.ID)

	_, _, err = f.service.GetRequest(context.Background(), studentActor("stu-2"), "req-1")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, _, err = f.service.GetRequest(context.Background(), adminActor("adm-1", deptECE), "req-1")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, _, err = f.service.GetRequest(context.Background(), studentActor("stu-1"), "missing")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestApplyTransitionResolve(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	req, err := f.service.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID:    "req-1",
		Target:       domain.RequestStatusResolved,
		ResponseText: "Duplicate hall ticket issued.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusResolved, req.Status)
	require.NotNil(t, req.ResolutionNotes)
	assert.Equal(t, "Duplicate hall ticket issued.", *req.ResolutionNotes)
	assert.NotNil(t, req.ResolvedAt)

	require.NotNil(t, f.requests.lastResponse)
	assert.Equal(t, domain.ResponseTypeResolution, f.requests.lastResponse.ResponseType)
	assert.Equal(t, "adm-1", f.requests.lastResponse.ResponderID)

	require.Len(t, f.dispatcher.published, 1)
	payload, ok := f.dispatcher.published[0].Payload.(events.RequestTransitionedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusResolved, payload.NewStatus)
	assert.Equal(t, "stu1@srmist.edu.in", payload.StudentEmail)
}

func TestApplyTransitionEscalateKeepsNotesEmpty(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	req, err := f.service.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID:    "req-1",
		Target:       domain.RequestStatusEscalated,
		ResponseText: "Needs registrar sign-off.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusEscalated, req.Status)
	assert.Nil(t, req.ResolutionNotes, "escalation does not write resolution notes")
	assert.Nil(t, req.ResolvedAt)
}

func TestApplyTransitionValidation(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)
	actor := adminActor("adm-1", deptCSE)

	_, err := f.service.ApplyTransition(context.Background(), actor, TransitionInput{
		RequestID: "req-1", Target: "archived", ResponseText: "x",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "unknown target")

	_, err = f.service.ApplyTransition(context.Background(), actor, TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusResolved, ResponseText: "   ",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "blank response text")

	_, err = f.service.ApplyTransition(context.Background(), actor, TransitionInput{
		RequestID: "missing", Target: domain.RequestStatusResolved, ResponseText: "x",
	})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestApplyTransitionAuthorization(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	_, err := f.service.ApplyTransition(context.Background(), adminActor("adm-2", deptECE), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusResolved, ResponseText: "x",
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err), "wrong department")

	_, err = f.service.ApplyTransition(context.Background(), superAdminActor("sup-1"), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusEscalated, ResponseText: "x",
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err), "super-admin cannot escalate")

	_, err = f.service.ApplyTransition(context.Background(), studentActor("stu-1"), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusResolved, ResponseText: "x",
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err), "students cannot transition")
}

func TestApplyTransitionConflictOnHandledRequest(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusResolved)

	_, err := f.service.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusTerminated, ResponseText: "x",
	})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
	assert.Zero(t, f.requests.transitionHits, "no write is attempted")
}

func TestApplyTransitionConflictOnLostRace(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)
	f.requests.denyTransition = true

	_, err := f.service.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusResolved, ResponseText: "x",
	})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
	assert.Equal(t, 1, f.requests.transitionHits)
	assert.Empty(t, f.dispatcher.published, "a lost race enqueues no notification")
}

func TestApplyTransitionSuperAdminFromEscalated(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusEscalated)

	req, err := f.service.ApplyTransition(context.Background(), superAdminActor("sup-1"), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusTerminated, ResponseText: "Out of scope for exam control.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusTerminated, req.Status)
	require.NotNil(t, f.requests.lastResponse)
	assert.Equal(t, domain.ResponseTypeTermination, f.requests.lastResponse.ResponseType)
}

func TestApplyTransitionAttachmentFailureAborts(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)
	f.store.err = errors.New("bucket unavailable")

	_, err := f.service.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID:    "req-1",
		Target:       domain.RequestStatusResolved,
		ResponseText: "x",
		Attachment:   &Upload{FileName: "proof.pdf", Data: []byte("x")},
	})
	assert.Equal(t, "STORAGE_FAILURE", domainCode(t, err))
	assert.Zero(t, f.requests.transitionHits, "upload failure aborts before any write")
	assert.Equal(t, domain.RequestStatusPending, f.requests.requests["req-1"].Status)
}

func TestApplyTransitionPersistenceFailure(t *testing.T) {
	f := newFixture()
	seedRequest(f, domain.RequestStatusPending)

	// Fail only the transition write; the initial read still succeeds.
	failing := &transitionFailingRepo{mockRequestRepo: f.requests}
	svc := NewRequestService(RequestDependencies{
		RequestRepo:    failing,
		ResponseRepo:   f.responses,
		DepartmentRepo: &mockDepartmentRepo{},
		ProfileRepo:    f.profiles,
		Attachments:    NewAttachmentService(f.store, zap.NewNop()),
		Dispatcher:     f.dispatcher,
		Logger:         zap.NewNop(),
	})

	_, err := svc.ApplyTransition(context.Background(), adminActor("adm-1", deptCSE), TransitionInput{
		RequestID: "req-1", Target: domain.RequestStatusResolved, ResponseText: "x",
	})
	assert.Equal(t, "PERSISTENCE_FAILURE", domainCode(t, err))
	assert.Empty(t, f.dispatcher.published)
}

type transitionFailingRepo struct {
	*mockRequestRepo
}

func (r *transitionFailingRepo) TransitionWithResponse(ctx context.Context, update repository.TransitionUpdate, response *domain.Response) (bool, error) {
	return false, errors.New("connection reset")
}

func TestGenerateRequestKeyFormat(t *testing.T) {
	key := generateRequestKey()
	assert.True(t, strings.HasPrefix(key, "REQ-"))
	parts := strings.Split(key, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 4)
	assert.Equal(t, strings.ToUpper(key), key)
}
