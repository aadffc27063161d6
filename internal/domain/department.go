package domain

import "time"

// Department represents an academic unit. Reference data: created and
// deactivated by institutional processes, never mutated by this service.
type Department struct {
	ID        string
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
}
