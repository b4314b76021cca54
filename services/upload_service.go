package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dixis/dixis/pkg"
)

// UploadPrefix is the URL path stored files are served under.
const UploadPrefix = "/uploads/"

// ImageFile is one uploaded multipart part. Field names the form field for
// validation messages, e.g. "main_image" or "gallery_images.2".
type ImageFile struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadService stores images under the upload directory with random names.
type UploadService interface {
	// SaveImage validates and writes f under dir, returning its public path.
	SaveImage(dir string, f ImageFile) (string, error)
	// Remove deletes a file previously returned by SaveImage. Missing files
	// and foreign paths are ignored.
	Remove(publicPath string)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
	log       *zap.Logger
}

func NewUploadService(uploadDir string, maxSize int64, log *zap.Logger) UploadService {
	return &uploadService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
		log:       log.Named("upload"),
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *uploadService) SaveImage(dir string, f ImageFile) (string, error) {
	if f.Header.Size > s.maxSize {
		return "", pkg.ValidationErrors{f.Field: fmt.Sprintf("may not be greater than %d kilobytes", s.maxSize/1024)}
	}

	// Sniff the content rather than trusting the client's Content-Type.
	head := make([]byte, 512)
	n, err := io.ReadFull(f.File, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	mimeType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return "", pkg.ValidationErrors{f.Field: "must be an image"}
	}
	if _, err := f.File.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	destDir := filepath.Join(s.uploadDir, dir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	destPath := filepath.Join(destDir, name)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, io.LimitReader(f.File, s.maxSize+1)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return UploadPrefix + path.Join(dir, name), nil
}

func (s *uploadService) Remove(publicPath string) {
	rel, ok := strings.CutPrefix(publicPath, UploadPrefix)
	if !ok || rel == "" {
		return
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return
	}
	if err := os.Remove(filepath.Join(s.uploadDir, clean)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove upload", zap.String("path", publicPath), zap.Error(err))
	}
}
