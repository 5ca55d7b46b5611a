package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaStorage re-hosts broadcast attachments.
type MediaStorage interface {
	// UploadMedia uploads the content of r and returns the secure URL.
	UploadMedia(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds a MediaStorage from a CLOUDINARY_URL style connection string.
func NewCloudinaryStorage(cloudinaryURL, folder string) (MediaStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

func (s *cloudinaryStorage) UploadMedia(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if folder == "" {
		folder = s.folder
	}

	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), base)

	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		ResourceType:   "auto",
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload media to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// LocalPath returns the file referenced by ref when ref is a file:// URL or a path that
// resolves to a regular file inside root. Relative paths are taken relative to root. An
// empty root, remote URLs, ".." segments and anything resolving outside root (symlinks
// included) return ok=false.
func LocalPath(root, ref string) (string, bool) {
	if root == "" {
		return "", false
	}

	path := ref
	if strings.HasPrefix(ref, "file://") {
		path = strings.TrimPrefix(ref, "file://")
	} else if strings.Contains(ref, "://") {
		return "", false
	}
	if path == "" {
		return "", false
	}

	for _, segment := range strings.FieldsFunc(path, isPathSeparator) {
		if segment == ".." {
			return "", false
		}
	}

	realRoot, err := resolve(root)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(realRoot, path)
	}
	realPath, err := resolve(path)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(realPath)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return realPath, true
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func isPathSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}
