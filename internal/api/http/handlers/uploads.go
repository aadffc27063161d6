package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// formUpload reads an optional multipart file field. A missing field yields
// (nil, nil); the attachment is optional on every endpoint that accepts one.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil || fileHeader == nil {
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("could not read uploaded file", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewValidationError("could not read uploaded file", nil)
	}

	return &service.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
