package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/repository"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

const (
	departmentCacheKey = "departments:active"
	departmentCacheTTL = 5 * time.Minute
)

// DepartmentService serves department reference data, cached in Redis since
// the rows change only through out-of-band institutional processes.
type DepartmentService struct {
	departments repository.DepartmentRepository
	cache       *redis.Client
	logger      *zap.Logger
}

// NewDepartmentService constructs the service. The cache client may be nil.
func NewDepartmentService(departments repository.DepartmentRepository, cache *redis.Client, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{departments: departments, cache: cache, logger: logger}
}

// ListActive returns active departments, from cache when possible.
func (s *DepartmentService) ListActive(ctx context.Context) ([]domain.Department, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, departmentCacheKey).Bytes(); err == nil {
			var result []domain.Department
			if err := json.Unmarshal(cached, &result); err == nil {
				return result, nil
			}
		}
	}

	result, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, departmentCacheKey, encoded, departmentCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache departments", zap.Error(err))
			}
		}
	}
	return result, nil
}
