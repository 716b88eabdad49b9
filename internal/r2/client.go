package r2

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"

	"pdfquiz/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config holds the Cloudflare R2 settings.
type Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // Base public URL for the bucket (e.g., https://pub-xxxxxxxx.r2.dev)
	// Endpoint overrides https://<AccountID>.r2.cloudflarestorage.com
	Endpoint string
}

func (c Config) complete() bool {
	return c.AccountID != "" && c.BucketName != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.PublicURL != ""
}

// Client archives generated artifacts to Cloudflare R2.
type Client struct {
	s3Client   *s3.Client
	bucketName string
	publicURL  *url.URL
}

// NewClient creates an R2 client. It returns (nil, nil) if the configuration
// is incomplete, leaving archiving disabled.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if !cfg.complete() {
		log.Warn("cloudflare R2 not fully configured, artifact archiving will be skipped",
			"required", "CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL")
		return nil, nil
	}

	publicURL, err := url.Parse(cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid R2 public base URL %q: %w", cfg.PublicURL, err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 is region-agnostic
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Info("R2 client initialized", "bucket", cfg.BucketName)
	return &Client{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		publicURL:  publicURL,
	}, nil
}

// Enabled reports whether uploads will be attempted.
func (c *Client) Enabled() bool { return c != nil && c.s3Client != nil }

// ObjectKey builds "artifacts/<sessionID>/<artifactID>/<filename>".
func ObjectKey(sessionID, artifactID uuid.UUID, filename string) string {
	return fmt.Sprintf("artifacts/%s/%s/%s", sessionID, artifactID, filename)
}

// UploadArtifact stores content under ObjectKey and returns its public URL.
func (c *Client) UploadArtifact(ctx context.Context, sessionID, artifactID uuid.UUID, filename string, content []byte) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("R2 client not initialized, skipping upload")
	}

	objectKey := ObjectKey(sessionID, artifactID, filename)

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to R2 (key: %s): %w", objectKey, err)
	}

	u := *c.publicURL
	u.Path = path.Join(u.Path, objectKey)
	return u.String(), nil
}
