package proofs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"contribot/internal/core"
)

// Minimal magic headers, enough for http.DetectContentType.
var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantExt string
		wantErr bool
	}{
		{name: "jpeg", data: jpegBytes, wantExt: "jpg"},
		{name: "png", data: pngBytes, wantExt: "png"},
		{name: "text", data: []byte("hello there"), wantErr: true},
		{name: "pdf", data: []byte("%PDF-1.4\n"), wantErr: true},
		{name: "empty", data: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ext, err := Detect(tt.data)
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if ext != tt.wantExt {
				t.Errorf("ext = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestKeyIsUniqueAndReadable(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 5, 123456789, time.UTC)
	a := Key(42, "March", at, "jpg")
	b := Key(42, "March", at, "jpg")
	if a == b {
		t.Fatalf("expected distinct keys for identical inputs, got %q twice", a)
	}
	re := regexp.MustCompile(`^March/screenshot_42_20250314_093005\.123456789_[0-9a-f]{8}\.jpg$`)
	if !re.MatchString(a) {
		t.Errorf("unexpected key %q", a)
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	path, err := store.Save(ctx, "March/p.jpg", jpegBytes, "image/jpeg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "March", "p.jpg") {
		t.Errorf("path = %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != string(jpegBytes) {
		t.Fatalf("unexpected file contents: %v %v", got, err)
	}

	if _, err := store.Save(ctx, "March/p.jpg", jpegBytes, "image/jpeg"); err == nil {
		t.Error("expected error when overwriting an existing proof")
	}
	if _, err := store.Save(ctx, "../escape.jpg", jpegBytes, "image/jpeg"); err == nil {
		t.Error("expected error for key escaping the base path")
	}
}

func TestSaverSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	saver := NewSaver(store, time.UTC).WithClock(func() time.Time { return at })
	ctx := context.Background()

	path, err := saver.Save(ctx, 7, "March", pngBytes)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(path, filepath.Join(dir, "March", "screenshot_7_20250314_093000")) || !strings.HasSuffix(path, ".png") {
		t.Errorf("unexpected path %q", path)
	}

	if _, err := saver.Save(ctx, 7, "March", []byte("not an image")); !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("disk full")
}

func TestSaverWrapsStoreFailure(t *testing.T) {
	saver := NewSaver(failingStore{}, nil)
	_, err := saver.Save(context.Background(), 1, "May", jpegBytes)
	if !errors.Is(err, core.ErrStorageFault) {
		t.Fatalf("expected ErrStorageFault, got %v", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoreSave(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "proofs", region: "eu-west-1"}

	url, err := store.Save(context.Background(), "March/a.jpg", jpegBytes, "image/jpeg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "https://proofs.s3.eu-west-1.amazonaws.com/March/a.jpg" {
		t.Errorf("url = %q", url)
	}
	if *fake.input.Bucket != "proofs" || *fake.input.Key != "March/a.jpg" || *fake.input.ContentType != "image/jpeg" {
		t.Errorf("unexpected input: %+v", fake.input)
	}

	fake.err = errors.New("access denied")
	if _, err := store.Save(context.Background(), "March/b.jpg", jpegBytes, "image/jpeg"); err == nil {
		t.Error("expected error from failed upload")
	}
}

func TestGCSURI(t *testing.T) {
	if got := gcsURI("bkt", "March/a.jpg"); got != "gs://bkt/March/a.jpg" {
		t.Errorf("gcsURI = %q", got)
	}
}
