package dto

import (
	"time"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// CreateRequestForm is the multipart payload for filing a request. The
// optional attachment arrives as a separate form file.
type CreateRequestForm struct {
	Title        string `form:"title"`
	Description  string `form:"description"`
	RequestType  string `form:"request_type"`
	Priority     string `form:"priority"`
	DepartmentID string `form:"department_id"`
}

// TransitionForm is the multipart payload for resolve/escalate/terminate.
type TransitionForm struct {
	ResponseText string `form:"response_text"`
}

// RequestSummary response.
type RequestSummary struct {
	ID           string                 `json:"id"`
	ExternalKey  string                 `json:"external_key"`
	DepartmentID string                 `json:"department_id"`
	Title        string                 `json:"title"`
	RequestType  domain.RequestType     `json:"request_type"`
	Priority     domain.RequestPriority `json:"priority"`
	Status       domain.RequestStatus   `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// RequestDetail provides the full request with its response thread.
type RequestDetail struct {
	ID              string                 `json:"id"`
	ExternalKey     string                 `json:"external_key"`
	StudentID       string                 `json:"student_id"`
	DepartmentID    string                 `json:"department_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	RequestType     domain.RequestType     `json:"request_type"`
	Priority        domain.RequestPriority `json:"priority"`
	Status          domain.RequestStatus   `json:"status"`
	Attachments     []string               `json:"attachments"`
	AssignedAdminID *string                `json:"assigned_admin_id,omitempty"`
	ResolutionNotes *string                `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
	Responses       []ResponseItem         `json:"responses"`
}

// ResponseItem represents one audit response in the thread.
type ResponseItem struct {
	ID           string              `json:"id"`
	ResponderID  string              `json:"responder_id"`
	ResponseText string              `json:"response_text"`
	ResponseType domain.ResponseType `json:"response_type"`
	Attachments  []string            `json:"attachments"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewRequestSummary maps a domain request.
func NewRequestSummary(req *domain.Request) RequestSummary {
	return RequestSummary{
		ID:           req.ID,
		ExternalKey:  req.ExternalKey,
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		RequestType:  req.RequestType,
		Priority:     req.Priority,
		Status:       req.Status,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
}

// NewRequestDetail maps a domain request with its responses.
func NewRequestDetail(req *domain.Request, responses []domain.Response) RequestDetail {
	detail := RequestDetail{
		ID:              req.ID,
		ExternalKey:     req.ExternalKey,
		StudentID:       req.StudentID,
		DepartmentID:    req.DepartmentID,
		Title:           req.Title,
		Description:     req.Description,
		RequestType:     req.RequestType,
		Priority:        req.Priority,
		Status:          req.Status,
		Attachments:     req.Attachments,
		AssignedAdminID: req.AssignedAdminID,
		ResolutionNotes: req.ResolutionNotes,
		CreatedAt:       req.CreatedAt,
		ResolvedAt:      req.ResolvedAt,
		Responses:       make([]ResponseItem, 0, len(responses)),
	}
	for _, resp := range responses {
		detail.Responses = append(detail.Responses, ResponseItem{
			ID:           resp.ID,
			ResponderID:  resp.ResponderID,
			ResponseText: resp.ResponseText,
			ResponseType: resp.ResponseType,
			Attachments:  resp.Attachments,
			CreatedAt:    resp.CreatedAt,
		})
	}
	return detail
}
