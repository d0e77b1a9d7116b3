package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
)

// fakeStorage acts as both orchestrator (issuing signed URLs) and storage
// (receiving the PUTs). Each file type can be told to refuse its PUT.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	refuse  map[string]bool
	server  *httptest.Server
}

func newFakeStorage(t *testing.T) *fakeStorage {
	t.Helper()
	fs := &fakeStorage{
		objects: make(map[string][]byte),
		refuse:  make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload-url", func(w http.ResponseWriter, r *http.Request) {
		fileType := r.URL.Query().Get("file_type")
		datasetID := r.URL.Query().Get("dataset_id")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"upload_url": fs.server.URL + "/put/" + fileType,
			"gcs_path":   "gs://bucket/" + datasetID + "/" + fileType,
			"id":         datasetID,
		})
	})
	mux.HandleFunc("/put/", func(w http.ResponseWriter, r *http.Request) {
		fileType := strings.TrimPrefix(r.URL.Path, "/put/")
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.refuse[fileType] {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		body, _ := io.ReadAll(r.Body)
		fs.objects[fileType] = body
		w.WriteHeader(http.StatusOK)
	})

	fs.server = httptest.NewServer(mux)
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeStorage) stored(fileType string) ([]byte, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	body, ok := fs.objects[fileType]
	return body, ok
}

func newTestCoordinator(t *testing.T, fs *fakeStorage) *Coordinator {
	t.Helper()
	client := orchestrator.NewClient(fs.server.URL, 5*time.Second)
	return NewCoordinator(client)
}

func TestUpload(t *testing.T) {
	fs := newFakeStorage(t)
	coordinator := newTestCoordinator(t, fs)

	spec := Spec{
		WorkflowID: "wf-1",
		Filename:   "patients.csv",
		Owner:      "alice",
		Blob:       []byte{0xde, 0xad, 0xbe, 0xef},
		WrappedKey: []byte{0x01, 0x02, 0x03},
	}

	upload, err := coordinator.Upload(context.Background(), spec)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if upload.DatasetID == "" {
		t.Errorf("Upload record has no dataset id")
	}
	if !upload.CiphertextUploaded || !upload.WrappedKeyUploaded {
		t.Errorf("Upload record reports incomplete transfer: %+v", upload)
	}
	if upload.CiphertextPath == "" || upload.WrappedKeyPath == "" {
		t.Errorf("Upload record is missing storage paths: %+v", upload)
	}

	if body, ok := fs.stored("dataset"); !ok || len(body) != 4 {
		t.Errorf("Ciphertext blob was not stored correctly: %v", body)
	}
	if body, ok := fs.stored("key"); !ok || len(body) != 3 {
		t.Errorf("Wrapped key blob was not stored correctly: %v", body)
	}
}

func TestUploadKeyTransferFails(t *testing.T) {
	fs := newFakeStorage(t)
	fs.refuse["key"] = true
	coordinator := newTestCoordinator(t, fs)

	_, err := coordinator.Upload(context.Background(), Spec{
		WorkflowID: "wf-1",
		Filename:   "patients.csv",
		Owner:      "alice",
		Blob:       []byte("ciphertext"),
		WrappedKey: []byte("wrapped"),
	})
	if !errors.Is(err, cerrors.ErrTransfer) {
		t.Fatalf("Expected ErrTransfer, got: %v", err)
	}
	// The error names the side that failed.
	if !strings.Contains(err.Error(), "wrapped key") {
		t.Errorf("Error does not name the failing side: %v", err)
	}
}

func TestUploadCiphertextTransferFails(t *testing.T) {
	fs := newFakeStorage(t)
	fs.refuse["dataset"] = true
	coordinator := newTestCoordinator(t, fs)

	_, err := coordinator.Upload(context.Background(), Spec{
		WorkflowID: "wf-1",
		Filename:   "patients.csv",
		Owner:      "alice",
		Blob:       []byte("ciphertext"),
		WrappedKey: []byte("wrapped"),
	})
	if !errors.Is(err, cerrors.ErrTransfer) {
		t.Fatalf("Expected ErrTransfer, got: %v", err)
	}
	if !strings.Contains(err.Error(), "ciphertext") {
		t.Errorf("Error does not name the failing side: %v", err)
	}
}

func TestUploadURLAcquisitionFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "unknown workflow"})
	}))
	defer server.Close()

	client := orchestrator.NewClient(server.URL, 5*time.Second)
	coordinator := NewCoordinator(client)

	_, err := coordinator.Upload(context.Background(), Spec{
		WorkflowID: "wf-missing",
		Filename:   "patients.csv",
		Owner:      "alice",
		Blob:       []byte("x"),
		WrappedKey: []byte("y"),
	})
	if !errors.Is(err, cerrors.ErrUploadURL) {
		t.Errorf("Expected ErrUploadURL, got: %v", err)
	}
}
