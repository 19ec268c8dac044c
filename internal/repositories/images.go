package repositories

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/estately/api/internal/config"
	"github.com/google/uuid"
)

// ImageStore hands out presigned upload URLs for listing photos on an
// S3-compatible bucket (Cloudflare R2). The server never proxies image
// bytes; clients upload directly against the signed URL.
type ImageStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewImageStore builds an ImageStore from static credentials and the
// account-scoped R2 endpoint.
func NewImageStore(cfg config.StorageConfig) *ImageStore {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &ImageStore{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// PresignUpload creates a presigned PUT URL for a new listing image owned
// by the given user. The object key is server-generated; the client only
// influences the file extension. Returns the upload URL and the public
// URL the listing should reference once the upload completes.
func (s *ImageStore) PresignUpload(ctx context.Context, owner uuid.UUID, filename string, expires time.Duration) (uploadURL, publicURL string, err error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("listings/%s/%s%s", owner, uuid.NewString(), ext)

	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}

	return req.URL, s.publicBaseURL + "/" + key, nil
}
