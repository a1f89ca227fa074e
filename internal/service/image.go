package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/config"
)

// InlineImageStore keeps meal photos in the meal row as data URLs
type InlineImageStore struct{}

func NewInlineImageStore() *InlineImageStore {
	return &InlineImageStore{}
}

// Store returns data encoded as a data: URL
func (s *InlineImageStore) Store(_ context.Context, _ uuid.UUID, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	mediaType := DetectMediaType(data, mimeType)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// S3ImageStore uploads meal photos to an S3 bucket and returns their URL
type S3ImageStore struct {
	s3Config *config.S3Config
	log      logrus.FieldLogger
}

func NewS3ImageStore(s3Config *config.S3Config, log logrus.FieldLogger) *S3ImageStore {
	return &S3ImageStore{
		s3Config: s3Config,
		log:      log.WithField("component", "image_store"),
	}
}

// Store uploads data under meal-images/<user>/<uuid><ext>
func (s *S3ImageStore) Store(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	mediaType := DetectMediaType(data, mimeType)
	key := MealImageKey(userID, mediaType)

	input := s.s3Config.PutObjectInput(key, mediaType)
	input.Body = bytes.NewReader(data)
	if _, err := s.s3Config.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload meal image: %w", err)
	}

	url := s.s3Config.PublicURL(key)
	s.log.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Info("Uploaded meal image")
	return url, nil
}

// MealImageKey builds a unique object key for a user's meal photo
func MealImageKey(userID uuid.UUID, mediaType string) string {
	ext := ".jpg"
	if mt := mimetype.Lookup(mediaType); mt != nil && mt.Extension() != "" {
		ext = mt.Extension()
	}
	return fmt.Sprintf("meal-images/%s/%s%s", userID, uuid.New(), ext)
}
