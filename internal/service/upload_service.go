package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/metrics"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/pkg/storage"
)

type IUploadService interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader) (*dto.UploadImageResponse, error)
}

type uploadService struct {
	storage storage.ImageStorage
	metrics *metrics.Metrics
	logger  logger.ILogger
}

func NewUploadService(imageStorage storage.ImageStorage, m *metrics.Metrics, log logger.ILogger) IUploadService {
	return &uploadService{
		storage: imageStorage,
		metrics: m,
		logger:  log,
	}
}

func (s *uploadService) UploadImage(ctx context.Context, file *multipart.FileHeader) (*dto.UploadImageResponse, error) {
	if file == nil {
		s.metrics.UploadFinished("rejected")
		return nil, apperror.BadRequest("No image file provided")
	}
	if file.Size > constant.MaxUploadSize {
		s.metrics.UploadFinished("rejected")
		return nil, apperror.BadRequest("Image must be 10MB or smaller")
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constant.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > constant.MaxUploadSize {
		s.metrics.UploadFinished("rejected")
		return nil, apperror.BadRequest("Image must be 10MB or smaller")
	}

	contentType := detectImageType(file.Header.Get("Content-Type"), data)
	if contentType == "" {
		s.metrics.UploadFinished("rejected")
		return nil, apperror.BadRequest("Only image files are allowed")
	}

	imageUrl, err := s.storage.Save(ctx, file.Filename, contentType, data)
	if err != nil {
		s.metrics.UploadFinished("failed")
		s.logger.Error("UPLOAD", "Failed to store image", map[string]interface{}{
			"file":  file.Filename,
			"size":  len(data),
			"error": err.Error(),
		})
		return nil, apperror.New(http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload image")
	}

	s.metrics.UploadFinished("ok")
	s.logger.Info("UPLOAD", "Image uploaded", map[string]interface{}{"url": imageUrl, "size": len(data)})
	return &dto.UploadImageResponse{ImageUrl: imageUrl}, nil
}

// detectImageType trusts the declared type when it is an image, otherwise
// sniffs the bytes. Returns "" for non-images.
func detectImageType(declared string, data []byte) string {
	if strings.HasPrefix(declared, constant.UploadImageMimePrefix) {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, constant.UploadImageMimePrefix) {
		return sniffed
	}
	return ""
}
