package dto

import "github.com/spec-kit/exam-portal/internal/domain"

// DepartmentItem response.
type DepartmentItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// NewDepartmentItems maps active departments for listing.
func NewDepartmentItems(departments []domain.Department) []DepartmentItem {
	items := make([]DepartmentItem, 0, len(departments))
	for _, dept := range departments {
		items = append(items, DepartmentItem{ID: dept.ID, Name: dept.Name, Code: dept.Code})
	}
	return items
}
