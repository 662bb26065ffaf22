package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Config covers AWS S3 and S3-compatible stores such as Cloudflare R2.
type S3Config struct {
	Provider  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	BaseURL   string
}

// S3Host stores objects in a bucket and serves them from BaseURL.
type S3Host struct {
	name     string
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

func NewS3Host(cfg S3Config) (*S3Host, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for %s", cfg.Provider)
	}
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.Provider == "r2" {
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
		}
		awsCfg.Region = aws.String("auto")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s session: %w", cfg.Provider, err)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Provider == "r2" {
			baseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	name := cfg.Provider
	if name == "" {
		name = "s3"
	}
	return &S3Host{
		name:     name,
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

func (h *S3Host) Name() string { return h.name }

func (h *S3Host) Upload(ctx context.Context, f File, key string) (Asset, error) {
	objectKey := key + f.Extension()
	_, err := h.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(f.Data),
		ContentType: aws.String(f.MediaType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("put %s: %w", objectKey, err)
	}
	return Asset{URL: h.baseURL + "/" + objectKey, PublicID: objectKey, Kind: f.Kind()}, nil
}

// Delete is idempotent: S3 reports success for missing keys.
func (h *S3Host) Delete(ctx context.Context, a Asset) error {
	_, err := h.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(a.PublicID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", a.PublicID, err)
	}
	return nil
}
