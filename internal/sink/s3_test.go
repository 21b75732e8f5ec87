package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"moodlog/internal/config"
	"moodlog/internal/mood"
)

// fakeS3 is a minimal path-style S3 endpoint holding one bucket.
type fakeS3 struct {
	bucket  string
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Write(data)
	default:
		writeS3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+code+`</Code><Message>`+code+`</Message></Error>`)
}

func newTestS3Sink(t *testing.T, fake *fakeS3, prefix string) *S3Sink {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Sink(context.Background(), config.ExportConfig{
		Type:              "s3",
		S3Bucket:          fake.bucket,
		S3Prefix:          prefix,
		S3Region:          "us-east-1",
		S3Endpoint:        srv.URL,
		S3AccessKeyID:     "test-access-key",
		S3SecretAccessKey: "test-secret-key",
	})
	if err != nil {
		t.Fatalf("NewS3Sink() error = %v", err)
	}
	return s
}

func TestS3Sink(t *testing.T) {
	t.Run("put then get under prefix", func(t *testing.T) {
		fake := &fakeS3{bucket: "moods", objects: make(map[string][]byte)}
		s := newTestS3Sink(t, fake, "/laptop/")

		data := `[{"timestamp":1,"values":{"note":null},"exported":false}]`
		if err := s.Put("emotion-entries.json", strings.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		if got := string(fake.objects["laptop/emotion-entries.json"]); got != data {
			t.Errorf("stored object = %q, want %q", got, data)
		}

		var buf bytes.Buffer
		if err := s.Get("emotion-entries.json", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != data {
			t.Errorf("Get() = %q, want %q", buf.String(), data)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		fake := &fakeS3{bucket: "moods", objects: make(map[string][]byte)}
		s := newTestS3Sink(t, fake, "")

		var buf bytes.Buffer
		if err := s.Get("nope.csv", &buf); !errors.Is(err, mood.ErrExportNotFound) {
			t.Errorf("Get() error = %v, want ErrExportNotFound", err)
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		fake := &fakeS3{bucket: "moods", objects: make(map[string][]byte)}
		s := newTestS3Sink(t, fake, "")
		if err := s.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}

		s.bucket = "other"
		if err := s.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() on missing bucket expected error")
		}
	})

	t.Run("requires bucket", func(t *testing.T) {
		_, err := NewS3Sink(context.Background(), config.ExportConfig{Type: "s3"})
		if err == nil {
			t.Error("NewS3Sink() without bucket expected error")
		}
	})
}
