package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// UploadService stores proof-of-delivery files in object storage and
// records the object name on the delivery.
type UploadService struct {
	deliveryRepo *repository.DeliveryRepository
	minioClient  *minio.Client
	bucketName   string
	logger       *zap.Logger
}

func NewUploadService(deliveryRepo *repository.DeliveryRepository, minioClient *minio.Client, bucketName string, logger *zap.Logger) *UploadService {
	return &UploadService{
		deliveryRepo: deliveryRepo,
		minioClient:  minioClient,
		bucketName:   bucketName,
		logger:       logger,
	}
}

// UploadProof stores the file and links it to the delivery. The minio
// client may be nil in development; the object name is still recorded so
// the flow can be exercised without storage.
func (s *UploadService) UploadProof(ctx context.Context, deliveryID, fileName, contentType string, reader io.Reader, fileSize int64) (string, error) {
	if _, err := s.deliveryRepo.FindByID(ctx, deliveryID); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("proofs/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return "", fmt.Errorf("upload proof: %w", err)
		}
	}

	if err := s.deliveryRepo.SetProof(ctx, deliveryID, objectName); err != nil {
		return "", fmt.Errorf("record proof: %w", err)
	}

	s.logger.Info("proof uploaded",
		zap.String("delivery_id", deliveryID),
		zap.String("object", objectName),
		zap.Int64("size", fileSize))
	return objectName, nil
}

// ProofURL returns a presigned download link for a recorded proof object.
func (s *UploadService) ProofURL(ctx context.Context, deliveryID string, expiry time.Duration) (string, error) {
	delivery, err := s.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		return "", err
	}
	if delivery.ProofObject == "" {
		return "", ErrInvalidInput
	}
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, delivery.ProofObject, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign proof: %w", err)
	}
	return u.String(), nil
}
