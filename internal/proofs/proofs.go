// Package proofs stores the photo proofs attached to contributions.
package proofs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"contribot/internal/core"
)

// ErrNotImage is returned by Detect for payloads that are not images.
var ErrNotImage = &core.ValidationError{Field: "proof", Reason: "must be an image"}

// Store persists proof bytes under key and returns the location to record.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// Detect sniffs data and returns its image content type and file extension.
func Detect(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrNotImage
	}
	contentType = http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", ErrNotImage
	}
	ext, ok := extensions[contentType]
	if !ok {
		ext = strings.TrimPrefix(contentType, "image/")
	}
	return contentType, ext, nil
}

// Key builds a collision-free object name:
// <month>/screenshot_<user>_<yyyymmdd_hhmmss.nnnnnnnnn>_<8 hex>.<ext>
func Key(userID int64, month core.Month, at time.Time, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("screenshot_%d_%s_%s.%s", userID, at.Format("20060102_150405.000000000"), suffix, ext)
	return path.Join(string(month), name)
}

// Saver detects, names and stores proofs.
type Saver struct {
	store Store
	now   func() time.Time
}

func NewSaver(store Store, loc *time.Location) *Saver {
	if loc == nil {
		loc = time.UTC
	}
	return &Saver{store: store, now: func() time.Time { return time.Now().In(loc) }}
}

// WithClock replaces the timestamp source used for names.
func (s *Saver) WithClock(now func() time.Time) *Saver {
	s.now = now
	return s
}

// Save validates data as an image and writes it. A non-image yields a
// ValidationError; a write failure yields core.ErrStorageFault.
func (s *Saver) Save(ctx context.Context, userID int64, month core.Month, data []byte) (string, error) {
	contentType, ext, err := Detect(data)
	if err != nil {
		return "", err
	}
	key := Key(userID, month, s.now(), ext)
	location, err := s.store.Save(ctx, key, data, contentType)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) || errors.Is(err, core.ErrStorageFault) {
			return "", err
		}
		return "", core.StorageFault("save proof", err)
	}
	return location, nil
}
