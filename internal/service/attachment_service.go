package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/storage"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// Upload describes an incoming file to be stored.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AttachmentService validates uploads and produces stable reference URLs.
type AttachmentService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(store storage.Store, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{store: store, logger: logger}
}

// StoreRequestAttachment uploads a student-submitted file.
func (s *AttachmentService) StoreRequestAttachment(ctx context.Context, actorID string, upload Upload) (string, error) {
	return s.storeValidated(ctx, storage.BucketRequestAttachments, "", actorID, upload)
}

// StoreResponseAttachment uploads an admin response file.
func (s *AttachmentService) StoreResponseAttachment(ctx context.Context, actorID string, upload Upload) (string, error) {
	return s.storeValidated(ctx, storage.BucketRequestResponses, "response", actorID, upload)
}

// StoreAvatar uploads a profile picture. Avatars take images only.
func (s *AttachmentService) StoreAvatar(ctx context.Context, actorID string, upload Upload) (string, error) {
	switch storage.Extension(upload.FileName) {
	case "jpg", "jpeg", "png", "gif":
	default:
		return "", apperrors.NewUnsupportedFileType(storage.Extension(upload.FileName))
	}
	return s.upload(ctx, storage.BucketAvatars, storage.ObjectName("avatar", actorID, upload.FileName), upload)
}

// storeValidated rejects disallowed extensions before any I/O happens.
func (s *AttachmentService) storeValidated(ctx context.Context, bucket storage.Bucket, prefix, actorID string, upload Upload) (string, error) {
	if !storage.AllowedExtension(upload.FileName) {
		return "", apperrors.NewUnsupportedFileType(storage.Extension(upload.FileName))
	}
	return s.upload(ctx, bucket, storage.ObjectName(prefix, actorID, upload.FileName), upload)
}

func (s *AttachmentService) upload(ctx context.Context, bucket storage.Bucket, name string, upload Upload) (string, error) {
	url, err := s.store.Upload(ctx, bucket, name, upload.ContentType, upload.Data)
	if err != nil {
		s.logger.Error("attachment upload failed",
			zap.String("bucket", string(bucket)),
			zap.String("object", name),
			zap.Error(err))
		return "", apperrors.NewStorageFailure(err)
	}
	return url, nil
}
