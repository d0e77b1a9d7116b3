package workflows

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cleanroom-sh/cleanroom/internal/configs"
	"github.com/cleanroom-sh/cleanroom/internal/envelope"
	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// fakeOrchestrator serves the orchestrator and storage endpoints the client
// layer talks to, backed by in-memory state.
type fakeOrchestrator struct {
	mu       sync.Mutex
	key      *rsa.PrivateKey
	objects  map[string][]byte
	approved map[string]map[string]bool
	created  map[string][]string
	logs     []string
	server   *httptest.Server
}

func newFakeOrchestrator(t *testing.T) *fakeOrchestrator {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate executor key: %v", err)
	}

	fo := &fakeOrchestrator{
		key:      key,
		objects:  make(map[string][]byte),
		approved: make(map[string]map[string]bool),
		created:  make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/executor-pubkey", fo.handleExecutorKey)
	mux.HandleFunc("/upload-url", fo.handleUploadURL)
	mux.HandleFunc("/put/", fo.handlePut)
	mux.HandleFunc("/workflows", fo.handleCreate)
	mux.HandleFunc("/workflows/", fo.handleWorkflowAction)
	mux.HandleFunc("/logs/", fo.handleLogs)
	mux.HandleFunc("/download-url", fo.handleDownloadURL)
	mux.HandleFunc("/object/", fo.handleObject)

	fo.server = httptest.NewServer(mux)
	t.Cleanup(fo.server.Close)
	return fo
}

func (fo *fakeOrchestrator) handleExecutorKey(w http.ResponseWriter, r *http.Request) {
	der, _ := x509.MarshalPKIXPublicKey(&fo.key.PublicKey)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	_ = json.NewEncoder(w).Encode(map[string]string{
		"public_key_pem":    string(pemData),
		"attestation_token": "fake-attestation-token",
	})
}

func (fo *fakeOrchestrator) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("dataset_id") + "/" + q.Get("file_type")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"upload_url": fo.server.URL + "/put/" + name,
		"gcs_path":   "gs://bucket/" + name,
		"id":         q.Get("dataset_id"),
	})
}

func (fo *fakeOrchestrator) handlePut(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fo.mu.Lock()
	fo.objects[strings.TrimPrefix(r.URL.Path, "/put/")] = buf.Bytes()
	fo.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (fo *fakeOrchestrator) handleCreate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workflowID := q.Get("workflow_id")
	fo.mu.Lock()
	fo.created[workflowID] = q["collaborator"]
	fo.approved[workflowID] = make(map[string]bool)
	fo.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{
		"workflow_id": workflowID,
		"status":      "PENDING_APPROVAL",
	})
}

func (fo *fakeOrchestrator) handleWorkflowAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/workflows/"), "/")
	workflowID := parts[0]

	fo.mu.Lock()
	defer fo.mu.Unlock()

	collaborators, ok := fo.created[workflowID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "workflow not found"})
		return
	}

	if len(parts) == 1 {
		status := "PENDING_APPROVAL"
		if fo.allApprovedLocked(workflowID) {
			status = "APPROVED"
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"workflow_id":  workflowID,
			"creator":      collaborators[0],
			"collaborator": collaborators,
			"status":       status,
			"created_at":   "2025-06-01T12:00:00Z",
		})
		return
	}

	switch parts[1] {
	case "approve":
		clientID := r.URL.Query().Get("client_id")
		fo.approved[workflowID][clientID] = true
		_ = json.NewEncoder(w).Encode(map[string]string{
			"workflow_id": workflowID,
			"status":      "APPROVED_BY " + clientID,
		})
	case "reject":
		_ = json.NewEncoder(w).Encode(map[string]string{
			"workflow_id": workflowID,
			"status":      "REJECTED",
		})
	case "run":
		if !fo.allApprovedLocked(workflowID) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "not all collaborators have approved"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":            "RUNNING",
			"executed_notebook": "gs://bucket/" + workflowID + "/out.ipynb",
		})
	case "result":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"workflow_id": workflowID,
			"results": []map[string]string{
				{
					"workflow_id":  workflowID,
					"result_path":  "gs://bucket/" + workflowID + "/metrics.json",
					"download_url": fo.server.URL + "/object/metrics.json",
				},
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fo *fakeOrchestrator) allApprovedLocked(workflowID string) bool {
	for _, clientID := range fo.created[workflowID] {
		if !fo.approved[workflowID][clientID] {
			return false
		}
	}
	return true
}

func (fo *fakeOrchestrator) handleLogs(w http.ResponseWriter, r *http.Request) {
	fo.mu.Lock()
	logs := append([]string(nil), fo.logs...)
	fo.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string][]string{"logs": logs})
}

func (fo *fakeOrchestrator) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{
		"download_url": fo.server.URL + "/object/metrics.json",
	})
}

func (fo *fakeOrchestrator) handleObject(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`{"accuracy": 0.94}`))
}

func (fo *fakeOrchestrator) stored(name string) ([]byte, bool) {
	fo.mu.Lock()
	defer fo.mu.Unlock()
	body, ok := fo.objects[name]
	return body, ok
}

// setupTestClient points the config at the fake orchestrator and redirects
// all user paths to a temp directory.
func setupTestClient(t *testing.T, fo *fakeOrchestrator, clientID string) {
	t.Helper()

	original := configs.UserCleanroomSettings
	tempDir := t.TempDir()
	configs.UserCleanroomSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempDir, "configs"),
		UserDataPath:    filepath.Join(tempDir, "data"),
	}
	t.Cleanup(func() {
		configs.UserCleanroomSettings = original
	})

	config := &configs.ClientConfig{}
	config.Client.OrchestratorURL = fo.server.URL
	config.Client.ID = clientID
	config.Polling.IntervalSeconds = 1
	if err := configs.SaveClientConfig(config); err != nil {
		t.Fatalf("Failed to save test config: %v", err)
	}
}

func TestSubmit(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")

	plaintext := []byte("age,income\n34,52000\n61,48000\n")
	dataset := filepath.Join(t.TempDir(), "patients.csv")
	if err := os.WriteFile(dataset, plaintext, 0600); err != nil {
		t.Fatalf("Failed to write dataset file: %v", err)
	}

	result, err := Submit(context.Background(), SubmitOptions{
		WorkflowID: "wf-1",
		Path:       dataset,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.AttestationToken != "fake-attestation-token" {
		t.Errorf("Attestation token is %q", result.AttestationToken)
	}
	if result.PlaintextBytes != int64(len(plaintext)) {
		t.Errorf("PlaintextBytes is %d, expected %d", result.PlaintextBytes, len(plaintext))
	}
	if result.CSVWarning {
		t.Errorf("CSV file raised a CSV warning")
	}
	if !result.Upload.CiphertextUploaded || !result.Upload.WrappedKeyUploaded {
		t.Errorf("Upload record reports incomplete transfer: %+v", result.Upload)
	}

	// The stored blob must decrypt back to the plaintext and never
	// contain it in the clear.
	blob, ok := fo.stored(result.Upload.DatasetID + "/dataset")
	if !ok {
		t.Fatalf("Ciphertext blob was not stored")
	}
	if bytes.Contains(blob, plaintext) {
		t.Fatalf("Stored blob contains the plaintext")
	}
	wrapped, ok := fo.stored(result.Upload.DatasetID + "/key")
	if !ok {
		t.Fatalf("Wrapped key blob was not stored")
	}

	dek, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, fo.key, wrapped, nil)
	if err != nil {
		t.Fatalf("Failed to unwrap data key: %v", err)
	}
	block, err := aes.NewCipher(dek)
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("Failed to create GCM: %v", err)
	}
	decrypted, err := gcm.Open(nil, blob[:envelope.NonceSize], blob[envelope.NonceSize:], nil)
	if err != nil {
		t.Fatalf("Failed to decrypt stored blob: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypted blob does not match the plaintext")
	}
}

func TestSubmitWarnsOnNonCSV(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")

	result, err := Submit(context.Background(), SubmitOptions{
		WorkflowID: "wf-1",
		Data:       []byte("some bytes"),
		Filename:   "notes.txt",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.CSVWarning {
		t.Errorf("Non-CSV file did not raise a CSV warning")
	}
}

func TestSubmitUnconfigured(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")

	// Blank out the identity.
	config, err := configs.LoadClientConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	config.Client.ID = ""
	if err := configs.SaveClientConfig(config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	_, err = Submit(context.Background(), SubmitOptions{WorkflowID: "wf-1", Data: []byte("x"), Filename: "x.csv"})
	if !errors.Is(err, cerrors.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got: %v", err)
	}
}

func TestWorkflowLifecycle(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")
	ctx := context.Background()

	created, err := Create(ctx, CreateOptions{
		WorkflowID:    "wf-lifecycle",
		Collaborators: []string{"ClientB"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.State.Status != workflow.StatusPendingApproval {
		t.Errorf("Created status is %s", created.State.Status)
	}
	// The creator is prepended but not auto-approved.
	if !created.State.IsCollaborator("ClientA") {
		t.Errorf("Creator is not in the collaborator set")
	}
	if created.State.Approvals["ClientA"] {
		t.Errorf("Creator was auto-approved")
	}

	// Running before everyone approved is refused by the orchestrator.
	if _, err := Run(ctx, RunOptions{WorkflowID: "wf-lifecycle"}); !errors.Is(err, cerrors.ErrApprovalNotComplete) {
		t.Fatalf("Expected ErrApprovalNotComplete, got: %v", err)
	}

	if _, err := Approve(ctx, ApprovalOptions{WorkflowID: "wf-lifecycle"}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := Approve(ctx, ApprovalOptions{WorkflowID: "wf-lifecycle", ClientID: "ClientB"}); err != nil {
		t.Fatalf("Approve as ClientB failed: %v", err)
	}

	run, err := Run(ctx, RunOptions{WorkflowID: "wf-lifecycle"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run.Execution.Status != "RUNNING" {
		t.Errorf("Execution status is %q", run.Execution.Status)
	}
	if !run.Mirrored || run.State.Status != workflow.StatusRunning {
		t.Errorf("Mirror was not advanced to RUNNING: %+v", run)
	}
}

func TestRejectedWorkflowFailsFast(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")
	ctx := context.Background()

	if _, err := Create(ctx, CreateOptions{WorkflowID: "wf-rejected", Collaborators: []string{"ClientB"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := Reject(ctx, ApprovalOptions{WorkflowID: "wf-rejected"}); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	// Both approval and run refuse locally, before any network call.
	if _, err := Approve(ctx, ApprovalOptions{WorkflowID: "wf-rejected"}); !errors.Is(err, cerrors.ErrWorkflowRejected) {
		t.Errorf("Approve after reject: expected ErrWorkflowRejected, got: %v", err)
	}
	if _, err := Run(ctx, RunOptions{WorkflowID: "wf-rejected"}); !errors.Is(err, cerrors.ErrWorkflowRejected) {
		t.Errorf("Run after reject: expected ErrWorkflowRejected, got: %v", err)
	}
}

func TestStatusReconcilesMirror(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")
	ctx := context.Background()

	if _, err := Create(ctx, CreateOptions{WorkflowID: "wf-status", Collaborators: []string{"ClientB"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// ClientB approves out of band; only the orchestrator sees it.
	fo.mu.Lock()
	fo.approved["wf-status"]["ClientA"] = true
	fo.approved["wf-status"]["ClientB"] = true
	fo.mu.Unlock()

	status, err := Status(ctx, StatusOptions{WorkflowID: "wf-status"})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Remote.Status != "APPROVED" {
		t.Errorf("Remote status is %q, expected APPROVED", status.Remote.Status)
	}
	if !status.Mirrored || status.State.Status != workflow.StatusApproved {
		t.Errorf("Mirror did not adopt the remote status: %+v", status)
	}
}

func TestWatch(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")
	fo.mu.Lock()
	fo.logs = []string{"cells running", "Notebook executed successfully"}
	fo.created["wf-1"] = []string{"ClientA"}
	fo.approved["wf-1"] = map[string]bool{}
	fo.mu.Unlock()

	var sawLogs []string
	watch, err := Watch(context.Background(), WatchOptions{
		WorkflowID: "wf-1",
		OnUpdate:   func(logs []string) { sawLogs = logs },
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if len(watch.Logs) != 2 {
		t.Errorf("Final logs have %d lines, expected 2", len(watch.Logs))
	}
	if len(sawLogs) != 2 {
		t.Errorf("OnUpdate delivered %d lines, expected 2", len(sawLogs))
	}
	if watch.ResultsErr != nil {
		t.Errorf("Result listing failed: %v", watch.ResultsErr)
	}
	if len(watch.Results) != 1 {
		t.Errorf("Results have %d entries, expected 1", len(watch.Results))
	}
}

func TestResults(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")
	// The results endpoint needs a known workflow.
	fo.mu.Lock()
	fo.created["wf-1"] = []string{"ClientA"}
	fo.approved["wf-1"] = map[string]bool{}
	fo.mu.Unlock()

	downloadDir := t.TempDir()
	result, err := Results(context.Background(), ResultsOptions{
		WorkflowID:  "wf-1",
		LoadContent: true,
		DownloadDir: downloadDir,
	})
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("%d entries failed", result.Failed)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("Results have %d entries, expected 1", len(result.Entries))
	}

	entry := result.Entries[0]
	if entry.Content == nil || entry.Content.Kind != "json" {
		t.Errorf("Content was not classified as JSON: %+v", entry.Content)
	}
	if entry.SavedTo == "" {
		t.Fatalf("Artifact was not downloaded")
	}
	saved, err := os.ReadFile(entry.SavedTo)
	if err != nil {
		t.Fatalf("Failed to read downloaded artifact: %v", err)
	}
	if !strings.Contains(string(saved), "accuracy") {
		t.Errorf("Downloaded artifact content is wrong: %q", saved)
	}
}

func TestAttest(t *testing.T) {
	fo := newFakeOrchestrator(t)
	setupTestClient(t, fo, "ClientA")

	result, err := Attest(context.Background())
	if err != nil {
		t.Fatalf("Attest failed: %v", err)
	}
	if result.AttestationToken != "fake-attestation-token" {
		t.Errorf("Attestation token is %q", result.AttestationToken)
	}
	if result.KeyBits != 2048 {
		t.Errorf("KeyBits is %d, expected 2048", result.KeyBits)
	}
	if len(result.Fingerprint) != 64 {
		t.Errorf("Fingerprint is %q, expected 64 hex characters", result.Fingerprint)
	}
}
