package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// BlobStore fetches raw document bytes given a storage reference.
type BlobStore interface {
	Fetch(ctx context.Context, storagePath string) ([]byte, error)
}

// FileBlobStore resolves storage references against a local document
// directory. References that are bare http(s) URLs are fetched over the
// network transparently, which is how externally hosted sample documents
// reach the review flow.
type FileBlobStore struct {
	baseDir    string
	httpClient *http.Client
}

// NewFileBlobStore creates a FileBlobStore rooted at baseDir.
func NewFileBlobStore(baseDir string) *FileBlobStore {
	return &FileBlobStore{baseDir: baseDir, httpClient: http.DefaultClient}
}

// Fetch returns the raw bytes behind a storage reference.
func (s *FileBlobStore) Fetch(ctx context.Context, storagePath string) ([]byte, error) {
	if strings.HasPrefix(storagePath, "http://") || strings.HasPrefix(storagePath, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, storagePath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create download request: %w", err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download external file: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to download external file (%d)", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(storagePath)))
	if err != nil {
		return nil, fmt.Errorf("failed to read document from storage: %w", err)
	}
	return data, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips characters unsafe for storage paths.
func SanitizeFilename(filename string) string {
	return unsafeFilenameChars.ReplaceAllString(filename, "_")
}

// BuildDocumentPath composes the storage path for an uploaded vendor document.
func BuildDocumentPath(userID, applicationID, inputKey, filename string) string {
	return strings.Join([]string{userID, applicationID, inputKey, SanitizeFilename(filename)}, "/")
}
