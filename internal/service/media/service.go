// Package media uploads product images to Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxImageBytes is the largest image accepted for upload.
const MaxImageBytes = 32 << 20

// ErrNotConfigured is returned when no Cloudinary URL was provided.
var ErrNotConfigured = errors.New("image uploads are not configured")

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadAPI is the subset of the Cloudinary upload client the service uses.
type UploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Image struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes"`
}

type Service struct {
	api    UploadAPI
	folder string
	logger *log.Logger
	now    func() time.Time
}

// New builds a Service. A nil api yields a Service whose uploads fail with
// ErrNotConfigured.
func New(api UploadAPI, folder string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if folder == "" {
		folder = "products"
	}
	return &Service{api: api, folder: folder, logger: logger, now: time.Now}
}

// NewFromURL connects to Cloudinary using a cloudinary:// URL.
func NewFromURL(cloudinaryURL, folder string, logger *log.Logger) (*Service, error) {
	if cloudinaryURL == "" {
		return New(nil, folder, logger), nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return New(&cld.Upload, folder, logger), nil
}

// Enabled reports whether uploads can be performed.
func (s *Service) Enabled() bool {
	return s.api != nil
}

// Upload stores an image read from r. filename is only used for its
// extension and a readable public id.
func (s *Service) Upload(ctx context.Context, r io.Reader, filename string, size int64) (*Image, error) {
	if s.api == nil {
		return nil, ErrNotConfigured
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return nil, fmt.Errorf("unsupported image type %q: %w", ext, domain.ErrInvalidInput)
	}
	if size <= 0 || size > MaxImageBytes {
		return nil, fmt.Errorf("image must be between 1 byte and %d MB: %w", MaxImageBytes>>20, domain.ErrInvalidInput)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	publicID := fmt.Sprintf("%s_%d", sanitize(base), s.now().UnixNano())
	result, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder,
		UseFilename:    boolPtr(true),
		UniqueFilename: boolPtr(true),
		Overwrite:      boolPtr(false),
		ResourceType:   "image",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	img := &Image{
		PublicID: result.PublicID,
		URL:      forceHTTPS(url),
		Width:    result.Width,
		Height:   result.Height,
		Bytes:    result.Bytes,
	}
	s.logger.Printf("media: uploaded public_id=%s bytes=%d", img.PublicID, img.Bytes)
	return img, nil
}

// Delete removes the image publicID from Cloudinary.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if s.api == nil {
		return ErrNotConfigured
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	// Cloudinary answers a missing asset with a result string, not an error.
	switch {
	case res == nil:
		return errors.New("failed to delete image: empty response")
	case res.Result == "not found":
		return fmt.Errorf("image %s: %w", publicID, domain.ErrNotFound)
	case res.Result != "ok":
		return fmt.Errorf("failed to delete image: result %q", res.Result)
	}
	s.logger.Printf("media: deleted public_id=%s", publicID)
	return nil
}

func forceHTTPS(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

func boolPtr(b bool) *bool { return &b }
