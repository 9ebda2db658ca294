package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"folio/common"
	"folio/models"
	"folio/repository"
	"folio/storage"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	ThumbnailWidth        = 400
	// MaxImagePixels bounds the decoded size of an image, which a small
	// compressed file can otherwise inflate far past the upload limit.
	MaxImagePixels = 50_000_000
)

// allowedTypes maps the detected content type of an upload to the
// extension it is stored under.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// thumbnailFormats are the types imaging can decode and encode.
var thumbnailFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
}

type UploadService struct {
	Base
	repo     *repository.UploadRepository
	store    storage.Storage
	maxBytes int64
	now      func() time.Time
}

func NewUploadService(b Base, repo *repository.UploadRepository, store storage.Storage, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{Base: b, repo: repo, store: store, maxBytes: maxBytes, now: time.Now}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores the file read from r. The type is sniffed from the content,
// never taken from the file name or the client.
func (s *UploadService) Upload(ctx context.Context, userID, filename string, r io.Reader) (*models.Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, s.fail(ctx, "read upload", err)
	}
	if len(data) == 0 {
		return nil, common.Validation("File is empty", "file")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, common.Validation(fmt.Sprintf("File is larger than %d bytes", s.maxBytes), "file")
	}

	contentType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, common.Validation("File type "+contentType+" is not allowed", "file")
	}

	up := &models.Upload{
		UserID:      userID,
		Filename:    cleanFilename(filename),
		Key:         storage.NewKey(s.now().UTC(), ext),
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	var thumb []byte
	if format, ok := thumbnailFormats[contentType]; ok {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, common.Validation("Image could not be decoded", "file")
		}
		if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
			return nil, common.Validation(fmt.Sprintf("Image is larger than %d pixels", MaxImagePixels), "file")
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, common.Validation("Image could not be decoded", "file")
		}
		b := img.Bounds()
		up.Width, up.Height = b.Dx(), b.Dy()
		if thumb, err = thumbnail(img, format); err != nil {
			return nil, s.fail(ctx, "thumbnail", err)
		}
	}

	if err := s.store.Put(ctx, up.Key, bytes.NewReader(data), up.Size, contentType); err != nil {
		return nil, s.fail(ctx, "store upload", err)
	}
	up.URL = s.store.URL(up.Key)

	if thumb != nil {
		key := strings.TrimSuffix(up.Key, ext) + "_thumb" + ext
		if err := s.store.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), contentType); err != nil {
			s.discard(ctx, up.Key)
			return nil, s.fail(ctx, "store thumbnail", err)
		}
		up.ThumbnailKey = key
		up.ThumbnailURL = s.store.URL(key)
	}

	if err := s.repo.Create(ctx, up); err != nil {
		s.discard(ctx, up.Key, up.ThumbnailKey)
		return nil, s.fail(ctx, "create upload", err)
	}
	s.log.InfoContext(ctx, "file uploaded", "id", up.ID, "key", up.Key, "type", contentType, "size", up.Size)
	return up, nil
}

func thumbnail(img image.Image, format imaging.Format) ([]byte, error) {
	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return truncate(name, 255)
}

// discard removes stored objects after a later step failed.
func (s *UploadService) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.WarnContext(ctx, "removing orphaned object", "key", key, "error", err)
		}
	}
}

func (s *UploadService) Get(ctx context.Context, id string) (*models.Upload, error) {
	up, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get upload", err)
	}
	if up == nil {
		return nil, s.notFound("Upload")
	}
	return up, nil
}

// List returns the uploads of userID, or every upload when userID is empty.
func (s *UploadService) List(ctx context.Context, userID string, p repository.Pagination) (*repository.Page[models.Upload], error) {
	page, err := s.repo.List(ctx, userID, p)
	if err != nil {
		return nil, s.fail(ctx, "list uploads", err)
	}
	return page, nil
}

// Delete removes the row first; objects left behind by a storage failure
// are logged, not returned.
func (s *UploadService) Delete(ctx context.Context, id string) error {
	up, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete upload", err)
	}
	if !ok {
		return s.notFound("Upload")
	}
	s.discard(ctx, up.Key, up.ThumbnailKey)
	s.log.InfoContext(ctx, "upload deleted", "id", id)
	return nil
}
