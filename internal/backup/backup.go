package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
	"github.com/deploymenttheory/go-minifs/internal/parsers/superblock"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

// keySuffix marks image backups in the bucket
const keySuffix = ".img.gz"

// Service copies whole images to and from an object store
type Service struct {
	Store  ObjectStore
	Opener interfaces.DeviceOpener
	Bucket string
	Prefix string
	Logger *slog.Logger

	IDFunc   func() string
	TimeFunc func() time.Time
}

// NewService creates a backup service that gzips images into store
func NewService(store ObjectStore, opener interfaces.DeviceOpener, config *Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:    &GzipObjectStore{ObjectStore: store},
		Opener:   opener,
		Bucket:   config.Bucket,
		Prefix:   config.Prefix,
		Logger:   logger,
		IDFunc:   uuid.NewString,
		TimeFunc: time.Now,
	}
}

// Push uploads the image at imagePath and returns the new object key
func (s *Service) Push(ctx context.Context, imagePath string) (string, error) {
	data, err := s.readImage(imagePath)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s-%s%s", s.Prefix, s.TimeFunc().UTC().Format("20060102T150405Z"), s.IDFunc(), keySuffix)
	if err := s.Store.PutObject(ctx, s.Bucket, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	s.Logger.Info("pushed image", "image", imagePath, "bucket", s.Bucket, "key", key, "bytes", len(data))
	return key, nil
}

// Pull downloads key and replaces the image at imagePath with it
func (s *Service) Pull(ctx context.Context, key, imagePath string) error {
	body, err := s.Store.GetObject(ctx, s.Bucket, key)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := validateImage(data); err != nil {
		return fmt.Errorf("object %s: %w", key, err)
	}

	device, err := s.Opener.Open(imagePath, true)
	if err != nil {
		return err
	}
	defer device.Close()

	if err := device.Truncate(0); err != nil {
		return err
	}
	if _, err := device.WriteAt(data, 0); err != nil {
		return err
	}
	if err := device.Sync(); err != nil {
		return err
	}

	s.Logger.Info("pulled image", "image", imagePath, "bucket", s.Bucket, "key", key, "bytes", len(data))
	return nil
}

// List returns the backup keys under the prefix, oldest first
func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := s.Store.ListObjects(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", s.Bucket, s.Prefix, err)
	}

	var backups []string
	for _, key := range keys {
		if strings.HasSuffix(key, keySuffix) {
			backups = append(backups, key)
		}
	}
	sort.Strings(backups)
	return backups, nil
}

// readImage loads a whole image after checking it is a minifs image
func (s *Service) readImage(imagePath string) ([]byte, error) {
	device, err := s.Opener.Open(imagePath, false)
	if err != nil {
		return nil, err
	}
	defer device.Close()

	size, err := device.Size()
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if _, err := device.ReadAt(data, 0); err != nil {
		return nil, err
	}

	if err := validateImage(data); err != nil {
		return nil, fmt.Errorf("image %s: %w", imagePath, err)
	}
	return data, nil
}

// validateImage checks the magic and that the image is as large as its
// parameters say
func validateImage(data []byte) error {
	info, err := superblock.ParseFsInfo(data, types.ByteOrder)
	if err != nil {
		return err
	}
	if !info.IsValid() {
		return fmt.Errorf("not a minifs image: magic 0x%X", info.Magic)
	}
	if int64(len(data)) < info.ImageSize() {
		return fmt.Errorf("image truncated: %d bytes, want %d", len(data), info.ImageSize())
	}
	return nil
}
