package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"hr-docgen-backend/config"
	filestorage "hr-docgen-backend/lib/file-storage"
	s3client "hr-docgen-backend/s3"
)

// InitS3 connects to object storage and makes sure the output bucket exists.
func InitS3(ctx context.Context) bool {
	minioClient, err := s3client.NewClient(s3client.Options{
		Endpoint:        config.Conf.S3.Endpoint,
		AccessKeyID:     config.Conf.S3.AccessKeyID,
		SecretAccessKey: config.Conf.S3.SecretAccessKey,
		UseSSL:          config.Conf.S3.UseSSL != nil && *config.Conf.S3.UseSSL,
	})
	if err != nil {
		log.WithError(err).Error("S3 client init failed")
		return false
	}

	// connection check
	if _, err = minioClient.ListBuckets(ctx); err != nil {
		log.WithError(err).Error("S3 connection failed, ListBuckets returned an error")
		return false
	}

	s3client.Client = minioClient
	filestorage.NewHandler(minioClient, config.Conf.S3.BucketName)
	if err = filestorage.Instance.MakeBucket(ctx); err != nil {
		log.WithError(err).WithField("bucket", config.Conf.S3.BucketName).Error("S3 bucket init failed")
		return false
	}
	log.Info("S3 client initialized")
	return true
}
