package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/config"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/events"
	"github.com/spec-kit/exam-portal/internal/mailer"
	"github.com/spec-kit/exam-portal/internal/observability"
)

type mockNotificationRepo struct {
	rows      map[string]domain.Notification
	nextID    int
	createErr error
	listErr   error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{rows: make(map[string]domain.Notification)}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	n.ID = "notif-" + strconv.Itoa(m.nextID)
	n.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	m.rows[n.ID] = *n
	return nil
}

func (m *mockNotificationRepo) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var pending []domain.Notification
	for _, n := range m.rows {
		if n.Status == domain.NotificationStatusPending {
			pending = append(pending, n)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *mockNotificationRepo) ListByStatus(ctx context.Context, status domain.NotificationStatus, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.rows {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string) error {
	n := m.rows[id]
	n.Status = domain.NotificationStatusSent
	m.rows[id] = n
	return nil
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id, content string) error {
	n := m.rows[id]
	n.Status = domain.NotificationStatusFailed
	n.Content = content
	m.rows[id] = n
	return nil
}

func newNotificationFixture(provider mailer.Provider) (*NotificationService, *mockNotificationRepo, events.Dispatcher) {
	repo := newMockNotificationRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(repo, provider, dispatcher, zap.NewNop(), observability.NewMetrics(),
		config.EmailConfig{PortalName: "Examination Control Portal", SenderName: "Examination Control Team"},
		config.SweepConfig{BatchLimit: 10})
	svc.RegisterHandlers()
	return svc, repo, dispatcher
}

func transitionedEvent(newStatus domain.RequestStatus) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventRequestTransitioned,
		RequestID: "req-1",
		ActorID:   "adm-1",
		Timestamp: time.Now(),
		Payload: events.RequestTransitionedPayload{
			OldStatus:    domain.RequestStatusPending,
			NewStatus:    newStatus,
			Notes:        "Duplicate hall ticket issued.",
			RequestTitle: "Hall ticket missing",
			ExternalKey:  "REQ-TEST-0001",
			StudentEmail: "stu1@srmist.edu.in",
			StudentName:  "Asha Kumar",
		},
	}
}

func TestTransitionEventDeliversEmail(t *testing.T) {
	provider := &mailer.DummyProvider{}
	_, repo, dispatcher := newNotificationFixture(provider)

	require.NoError(t, dispatcher.Publish(context.Background(), transitionedEvent(domain.RequestStatusResolved)))

	require.Len(t, provider.Sent, 1)
	msg := provider.Sent[0]
	assert.Equal(t, "stu1@srmist.edu.in", msg.RecipientEmail)
	assert.Equal(t, `Your Request "Hall ticket missing" Has Been Resolved`, msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Duplicate hall ticket issued.")

	require.Len(t, repo.rows, 1)
	for _, n := range repo.rows {
		assert.Equal(t, domain.NotificationStatusSent, n.Status)
		assert.Equal(t, domain.EmailTypeRequestResolved, n.EmailType)
	}
}

func TestOutcomeSubjects(t *testing.T) {
	cases := []struct {
		status    domain.RequestStatus
		emailType domain.EmailType
		subject   string
	}{
		{domain.RequestStatusResolved, domain.EmailTypeRequestResolved, `Your Request "Hall ticket missing" Has Been Resolved`},
		{domain.RequestStatusEscalated, domain.EmailTypeRequestEscalated, `Your Request "Hall ticket missing" Has Been Escalated`},
		{domain.RequestStatusTerminated, domain.EmailTypeRequestTerminated, `Your Request "Hall ticket missing" Has Been Closed`},
	}
	for _, tc := range cases {
		provider := &mailer.DummyProvider{}
		_, repo, dispatcher := newNotificationFixture(provider)

		require.NoError(t, dispatcher.Publish(context.Background(), transitionedEvent(tc.status)))
		require.Len(t, provider.Sent, 1, string(tc.status))
		assert.Equal(t, tc.subject, provider.Sent[0].Subject)
		for _, n := range repo.rows {
			assert.Equal(t, tc.emailType, n.EmailType)
		}
	}
}

func TestDeliveryFailureKeepsRecordWithAnnotation(t *testing.T) {
	provider := &mailer.DummyProvider{Err: errors.New("provider timeout")}
	_, repo, dispatcher := newNotificationFixture(provider)

	require.NoError(t, dispatcher.Publish(context.Background(), transitionedEvent(domain.RequestStatusResolved)))

	require.Len(t, repo.rows, 1)
	for _, n := range repo.rows {
		assert.Equal(t, domain.NotificationStatusFailed, n.Status)
		assert.Contains(t, n.Content, "\n\nError: provider timeout")
	}
}

func TestSweepRetriesOldestFirstWithinLimit(t *testing.T) {
	provider := &mailer.DummyProvider{}
	svc, repo, _ := newNotificationFixture(provider)

	for i := 0; i < 15; i++ {
		n := domain.Notification{
			RecipientEmail: "stu1@srmist.edu.in",
			RecipientName:  "Asha Kumar",
			RequestID:      "req-1",
			EmailType:      domain.EmailTypeRequestResolved,
			Subject:        "Subject " + strconv.Itoa(i),
			Content:        "body",
			Status:         domain.NotificationStatusPending,
		}
		require.NoError(t, repo.Create(context.Background(), &n))
	}

	processed, sent := svc.Sweep(context.Background(), 10)
	assert.Equal(t, 10, processed)
	assert.Equal(t, 10, sent)
	require.Len(t, provider.Sent, 10)
	assert.Equal(t, "Subject 0", provider.Sent[0].Subject, "oldest row goes first")

	processed, sent = svc.Sweep(context.Background(), 10)
	assert.Equal(t, 5, processed)
	assert.Equal(t, 5, sent)
}

func TestSweepCountsFailures(t *testing.T) {
	provider := &mailer.DummyProvider{Err: errors.New("provider down")}
	svc, repo, _ := newNotificationFixture(provider)

	n := domain.Notification{
		RecipientEmail: "stu1@srmist.edu.in",
		RequestID:      "req-1",
		EmailType:      domain.EmailTypeRequestResolved,
		Subject:        "s",
		Content:        "body",
		Status:         domain.NotificationStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), &n))

	processed, sent := svc.Sweep(context.Background(), 10)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 0, sent)

	// Failed rows are final; another sweep finds nothing to do.
	processed, _ = svc.Sweep(context.Background(), 10)
	assert.Equal(t, 0, processed)
}

func TestEnqueueFailureSurfacesError(t *testing.T) {
	provider := &mailer.DummyProvider{}
	svc, repo, _ := newNotificationFixture(provider)
	repo.createErr = errors.New("insert failed")

	err := svc.Enqueue(context.Background(), &domain.Notification{
		RecipientEmail: "stu1@srmist.edu.in",
		RequestID:      "req-1",
		EmailType:      domain.EmailTypeRequestResolved,
		Subject:        "s",
		Content:        "body",
	})
	assert.Error(t, err)
	assert.Empty(t, provider.Sent, "nothing sends without a durable record")
}
