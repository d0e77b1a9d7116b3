package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cleanroom-sh/cleanroom/internal/configs"
)

// Entry records a single submission-pipeline action.
type Entry struct {
	Timestamp string `json:"ts"`     // RFC3339 with microseconds.
	ClientID  string `json:"client"` // Party performing the action.
	ClientUID string `json:"uuid"`   // Installation UUID.
	Operation string `json:"op"`     // Operation name.

	// Optional fields depending on operation.
	WorkflowID     string   `json:"workflow_id,omitempty"`
	DatasetID      string   `json:"dataset_id,omitempty"`
	Filename       string   `json:"filename,omitempty"`
	CiphertextPath string   `json:"ciphertext_path,omitempty"`
	WrappedKeyPath string   `json:"wrapped_key_path,omitempty"`
	Collaborators  []string `json:"collaborators,omitempty"`
	Status         string   `json:"status,omitempty"`
}

// Log appends an entry to the journal.
// If logging fails, the entry is dropped silently. Pipeline operations
// must not fail just because journaling failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := Path()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ForClient is a convenience constructor that stamps the entry with the
// client identity from config.
func ForClient(op string, config *configs.ClientConfig) Entry {
	entry := Entry{Operation: op}
	if config != nil {
		entry.ClientID = config.Client.ID
		entry.ClientUID = config.Client.UUID
	}
	return entry
}

// Path returns the journal file location, or empty when settings are not
// initialized.
func Path() string {
	if configs.UserCleanroomSettings == nil || configs.UserCleanroomSettings.UserDataPath == "" {
		return ""
	}
	return filepath.Join(configs.UserCleanroomSettings.UserDataPath, "journal.jsonl")
}
