// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sobrazero/sobrazero-backend/internal/config"
)

// StorageService uploads commerce and offer images to S3. Without AWS
// credentials it degrades to local URLs so development does not need a
// bucket.
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64
	AllowedTypes []string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// NewLocalStorageService always serves local upload URLs, regardless of the
// configured credentials. Callers fall back to it when the S3 session
// cannot be built.
func NewLocalStorageService(cfg *config.Config) *StorageService {
	return &StorageService{cfg: cfg}
}

func (s *StorageService) UploadImage(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fmt.Errorf("file size %d exceeds limit of %d bytes", header.Size, options.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(options.AllowedTypes) > 0 {
		allowed := false
		for _, t := range options.AllowedTypes {
			if ext == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("file type %s is not allowed", ext)
		}
	}

	if err := s.validateImageSignature(file); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	key := s.objectKey(ext, options.Folder)
	contentType := header.Header.Get("Content-Type")

	if s.s3Client == nil {
		return &UploadResult{
			URL:      fmt.Sprintf("http://localhost:%s/uploads/%s", s.cfg.Server.Port, key),
			Key:      key,
			Size:     int64(len(data)),
			MimeType: contentType,
		}, nil
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.publicURL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteImage(key string) error {
	if s.s3Client == nil {
		logrus.WithField("key", key).Debug("Local storage, skipping delete")
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// ImageUploadOptions returns the per-category size and type limits.
func (s *StorageService) ImageUploadOptions(category string) UploadOptions {
	switch category {
	case "comercios":
		return UploadOptions{
			Folder:       "comercios",
			MaxSize:      10 * 1024 * 1024,
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp"},
		}
	case "ofertas":
		return UploadOptions{
			Folder:       "ofertas",
			MaxSize:      5 * 1024 * 1024,
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp"},
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      2 * 1024 * 1024,
			AllowedTypes: []string{".jpg", ".jpeg", ".png"},
		}
	}
}

func (s *StorageService) objectKey(ext, folder string) string {
	name := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102"), uuid.New().String()[:8], ext)
	if folder != "" {
		return folder + "/" + name
	}
	return name
}

func (s *StorageService) publicURL(key string) string {
	if s.cfg.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key)
}

// validateImageSignature checks the magic bytes instead of trusting the
// client's content type.
func (s *StorageService) validateImageSignature(file multipart.File) error {
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	switch {
	case len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF:
		return nil // JPEG
	case len(buffer) >= 8 && bytes.Equal(buffer[:4], []byte{0x89, 'P', 'N', 'G'}):
		return nil // PNG
	case len(buffer) >= 12 && string(buffer[:4]) == "RIFF" && string(buffer[8:12]) == "WEBP":
		return nil // WebP
	}
	return fmt.Errorf("invalid image file")
}
