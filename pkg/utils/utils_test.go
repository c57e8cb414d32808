package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	now := time.Now()

	id, err := u.NewULIDFromTimestamp(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := ulid.Parse(id)
	if err != nil {
		t.Fatalf("generated ULID does not parse: %v", err)
	}

	if parsed.Time() != ulid.Timestamp(now) {
		t.Errorf("ULID timestamp = %d, want %d", parsed.Time(), ulid.Timestamp(now))
	}
}

func TestValidateImageFile(t *testing.T) {
	u := New()

	imageHeader := func(size int64, contentType string) *multipart.FileHeader {
		return &multipart.FileHeader{
			Filename: "photo.jpg",
			Size:     size,
			Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
		}
	}

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr bool
	}{
		{"nil file", nil, true},
		{"valid jpeg", imageHeader(1024, "image/jpeg"), false},
		{"valid png", imageHeader(1024, "image/png"), false},
		{"too large", imageHeader(11*1024*1024, "image/jpeg"), true},
		{"not an image", imageHeader(1024, "application/pdf"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := u.ValidateImageFile(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvertFileToBase64(t *testing.T) {
	u := New()

	content := []byte("fake image bytes")
	encoded, err := u.ConvertFileToBase64(nopFile{bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, content) {
		t.Errorf("round trip mismatch: got %q", decoded)
	}
}

type nopFile struct {
	*bytes.Reader
}

func (nopFile) Close() error { return nil }

func TestDecodeImageDimensions(t *testing.T) {
	u := New()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	dims, err := u.DecodeImageDimensions(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dims.Width != 640 || dims.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", dims.Width, dims.Height)
	}
	if dims.AspectRatio != 640.0/480.0 {
		t.Errorf("AspectRatio = %v, want %v", dims.AspectRatio, 640.0/480.0)
	}
}

func TestDecodeImageDimensionsRejectsGarbage(t *testing.T) {
	u := New()

	if _, err := u.DecodeImageDimensions(strings.NewReader("not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}
