package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore places uploaded files on the local disk where the client assets
// are served from.
type ImageStore struct {
	basePath string
	baseURL  string
}

func NewImageStore(basePath, baseURL string) (*ImageStore, error) {
	err := os.MkdirAll(basePath, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &ImageStore{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// PlaceDocument relocates a temp upload to its deterministic location,
// {userID}.{fieldKey}.{ext}, and removes the temp copy. The extension comes
// from the original file name.
func (s *ImageStore) PlaceDocument(ctx context.Context, userID, fieldKey, originalName, tempPath string) (string, error) {
	parts := strings.Split(originalName, ".")
	ext := parts[len(parts)-1]

	targetName := fmt.Sprintf("%s.%s.%s", userID, fieldKey, ext)
	targetPath := filepath.Join(s.basePath, targetName)

	if err := os.Rename(tempPath, targetPath); err != nil {
		// Rename fails across filesystems; fall back to copy and unlink.
		if copyErr := s.copyFile(tempPath, targetPath); copyErr != nil {
			return "", fmt.Errorf("failed to place document %s: %w", targetName, copyErr)
		}
		if rmErr := os.Remove(tempPath); rmErr != nil {
			return "", fmt.Errorf("failed to remove temp file %s: %w", tempPath, rmErr)
		}
	}

	return targetPath, nil
}

func (s *ImageStore) Delete(ctx context.Context, name string) error {
	return os.Remove(filepath.Join(s.basePath, name))
}

// URL returns the public path the placed document is served from.
func (s *ImageStore) URL(name string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + name
}

func (s *ImageStore) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
