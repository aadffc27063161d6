package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/config"
)

// SupabaseStore talks to a Supabase-compatible storage REST API using the
// server-side service key. Public URLs resolve without credentials.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	logger     *zap.Logger
}

var _ Store = (*SupabaseStore)(nil)

// NewSupabaseStore builds the store client.
func NewSupabaseStore(cfg config.StorageConfig, logger *zap.Logger) *SupabaseStore {
	timeout := time.Duration(cfg.UploadTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Upload stores the object and returns its public URL.
func (s *SupabaseStore) Upload(ctx context.Context, bucket Bucket, name, contentType string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		s.logger.Error("storage upload failed",
			zap.String("bucket", string(bucket)),
			zap.String("object", name),
			zap.Int("status", res.StatusCode),
			zap.ByteString("body", body))
		return "", fmt.Errorf("storage upload: status %d", res.StatusCode)
	}

	return s.PublicURL(bucket, name), nil
}

// PublicURL returns the stable, credential-free URL for an object.
func (s *SupabaseStore) PublicURL(bucket Bucket, name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, name)
}
