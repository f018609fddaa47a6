package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"course_gen_backend/config"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/utils"
)

type Service struct {
	Client      *minio.Client
	Bucket      string
	Region      string
	StorageType string
	Timeout     time.Duration

	SourceKeys *utils.FileKeyGenerator
	CourseKeys *utils.FileKeyGenerator
}

func InitStorageService(cfg *config.Config) (*Service, error) {
	var minioClient *minio.Client
	var err error

	switch cfg.StorageType {
	case "minio":
		minioClient, err = utils.CreateMinIOClient(cfg)
	case "s3":
		minioClient, err = utils.CreateS3Client(cfg)
	default:
		err = fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if err != nil {
		logging.Logger.Error("fail InitStorageService", "error", err)
		return nil, err
	}
	ss := &Service{
		Client:      minioClient,
		Bucket:      cfg.BucketName,
		Region:      cfg.BucketRegion,
		StorageType: cfg.StorageType,
		Timeout:     cfg.UploadTimeout,
		SourceKeys:  utils.NewFileKeyGenerator(utils.StrategyDateBased, "sources"),
		CourseKeys:  utils.NewFileKeyGenerator(utils.StrategyRequestBased, "courses"),
	}
	if err := ss.EnsureBucketExists(context.Background()); err != nil {
		logging.Logger.Error("fail InitStorageService", "error", err)
		return nil, err
	}
	logging.Logger.Info("Storage service initialized",
		"type", cfg.StorageType,
		"bucket", cfg.BucketName,
		"region", cfg.BucketRegion,
	)
	return ss, nil
}

func (ss *Service) EnsureBucketExists(ctx context.Context) error {
	exists, err := ss.Client.BucketExists(ctx, ss.Bucket)
	if err != nil {
		return err
	}
	if exists {
		logging.Logger.Info("Bucket already exists", "bucket", ss.Bucket)
		return nil
	}
	err = ss.Client.MakeBucket(ctx, ss.Bucket, minio.MakeBucketOptions{Region: ss.Region})
	if err != nil {
		if ss.StorageType == "s3" {
			logging.Logger.Warn("Could not create S3 bucket (might exist or no permission)",
				"bucket", ss.Bucket, "error", err)
			return nil
		}
		return err
	}
	logging.Logger.Info("Bucket created successfully", "bucket", ss.Bucket)
	return nil
}

func (ss *Service) SourceKey(filename, requestID string) string {
	return ss.SourceKeys.GenerateFileKey(filename, requestID)
}

func (ss *Service) CourseKey(requestID string) string {
	return ss.CourseKeys.GenerateFileKey("course.json", requestID)
}

func (ss *Service) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if ss.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ss.Timeout)
		defer cancel()
	}
	_, err := ss.Client.PutObject(ctx, ss.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (ss *Service) GeneratePresignedGetDownload(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		return "", fmt.Errorf("expiration error")
	}
	presignedURL, err := ss.Client.PresignedGetObject(ctx, ss.Bucket, fileKey, expiry, nil)
	if err != nil {
		logging.Logger.Error("fail GeneratePresignedGetDownload", "error", err)
		return "", err
	}
	return presignedURL.String(), nil
}

func (ss *Service) FileExists(ctx context.Context, fileKey string) (bool, error) {
	_, err := ss.Client.StatObject(ctx, ss.Bucket, fileKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
