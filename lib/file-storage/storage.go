package filestorage

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	s3client "hr-docgen-backend/s3"
)

// Provider mirrors generated files to an object storage bucket.
type Provider interface {
	UploadFile(ctx context.Context, filePath string) error
	MakeBucket(ctx context.Context) error
}

var Instance Provider

type impl struct {
	s3client   *minio.Client
	bucketName string
	prefix     string
}

// NewHandler sets Instance; objects are stored under a per-day prefix.
func NewHandler(client *minio.Client, bucketName string) {
	Instance = NewInstance(client, bucketName, time.Now().Format("2006-01-02"))
}

func NewInstance(client *minio.Client, bucketName, prefix string) Provider {
	return &impl{s3client: client, bucketName: bucketName, prefix: prefix}
}

func (i impl) UploadFile(ctx context.Context, filePath string) error {
	name := ObjectName(i.prefix, filePath)
	_, err := i.s3client.FPutObject(ctx, i.bucketName, name, filePath, minio.PutObjectOptions{ContentType: ContentType(filePath)})
	if err != nil {
		return errors.Wrapf(err, "unable to upload %s", name)
	}
	log.WithFields(log.Fields{"bucket": i.bucketName, "object": name}).Info("output mirrored")
	return nil
}

func (i impl) MakeBucket(ctx context.Context) error {
	return s3client.MakeBucket(ctx, i.s3client, i.bucketName)
}

func ObjectName(prefix, filePath string) string {
	if prefix == "" {
		return filepath.Base(filePath)
	}
	return path.Join(prefix, filepath.Base(filePath))
}

func ContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".zip":
		return "application/zip"
	}
	return "application/octet-stream"
}
