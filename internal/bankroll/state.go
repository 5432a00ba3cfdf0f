package bankroll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"BankrollSentinel/internal/model"
)

// LoadState reads the app state from a JSON file. Returns the initial state if
// the file doesn't exist. A garbled file also yields the initial state, along
// with an error wrapping ErrCorruptState.
func LoadState(filePath string) (*model.AppState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.InitialState(), nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.InitialState(), nil
	}
	state, err := decodeState(data)
	if err != nil {
		return model.InitialState(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return state, nil
}

// SaveState writes the state to a JSON file, replacing it atomically.
func SaveState(filePath string, state *model.AppState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

// Export writes the same document SaveState would persist.
func Export(w io.Writer, state *model.AppState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// BackupFileName is the export file name for the given day.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("bankroll_backup_%s.json", now.Format("2006-01-02"))
}

// ExportFile writes a backup into dir and returns its path.
func ExportFile(dir string, state *model.AppState, now time.Time) (string, error) {
	path := filepath.Join(dir, BackupFileName(now))
	data, err := encodeState(state)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// DecodeBackup parses a user supplied backup. It only accepts documents with
// a config object and a sessions array.
func DecodeBackup(r io.Reader) (*model.AppState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	state, err := decodeState(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return state, nil
}

func decodeState(data []byte) (*model.AppState, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if !isJSONKind(top["config"], '{') {
		return nil, fmt.Errorf("missing config object")
	}
	if !isJSONKind(top["sessions"], '[') {
		return nil, fmt.Errorf("missing sessions array")
	}
	var state model.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	state.Normalize()
	return &state, nil
}

func encodeState(state *model.AppState) ([]byte, error) {
	s := state.Clone()
	s.Normalize()
	return json.MarshalIndent(&s, "", "  ")
}

func isJSONKind(raw json.RawMessage, open byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == open
}

// quarantine moves a corrupt state file aside so it is not overwritten.
func quarantine(filePath string, now time.Time) (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%d", filePath, now.Unix())
	if err := os.Rename(filePath, dst); err != nil {
		return "", err
	}
	return dst, nil
}
