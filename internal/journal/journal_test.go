package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cleanroom-sh/cleanroom/internal/configs"
)

func withTempSettings(t *testing.T) {
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
}

func readEntries(t *testing.T) []Entry {
	t.Helper()
	f, err := os.Open(Path())
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Journal line is not valid JSON: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogAppendsEntries(t *testing.T) {
	withTempSettings(t)

	Log(Entry{ClientID: "ClientA", Operation: "submit", WorkflowID: "wf-1", DatasetID: "ds-1"})
	Log(Entry{ClientID: "ClientA", Operation: "approve", WorkflowID: "wf-1"})

	entries := readEntries(t)
	if len(entries) != 2 {
		t.Fatalf("Journal has %d entries, expected 2", len(entries))
	}
	if entries[0].Operation != "submit" || entries[0].DatasetID != "ds-1" {
		t.Errorf("First entry is wrong: %+v", entries[0])
	}
	if entries[1].Operation != "approve" {
		t.Errorf("Second entry is wrong: %+v", entries[1])
	}
	if entries[0].Timestamp == "" {
		t.Errorf("Timestamp was not stamped")
	}
}

func TestForClient(t *testing.T) {
	config := &configs.ClientConfig{}
	config.Client.ID = "ClientA"
	config.Client.UUID = "uuid-123"

	entry := ForClient("run", config)
	if entry.Operation != "run" || entry.ClientID != "ClientA" || entry.ClientUID != "uuid-123" {
		t.Errorf("Entry is wrong: %+v", entry)
	}

	// A nil config still yields a usable entry.
	entry = ForClient("run", nil)
	if entry.Operation != "run" {
		t.Errorf("Entry is wrong: %+v", entry)
	}
}

func TestLogWithoutSettingsIsSilent(t *testing.T) {
	original := configs.UserCleanroomSettings
	configs.UserCleanroomSettings = nil
	defer func() {
		configs.UserCleanroomSettings = original
	}()

	// Must not panic or create anything.
	Log(Entry{Operation: "submit"})
}
