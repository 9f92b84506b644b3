package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/service"
)

// FilePersistence stores each session as <dir>/<id>.json
type FilePersistence struct {
	sessionsDir string
	scenarios   service.ScenarioManager
}

// NewFilePersistence creates the sessions directory if needed
func NewFilePersistence(sessionsDir string, scenarios service.ScenarioManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, eris.Wrap(err, "failed to create sessions directory")
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		scenarios:   scenarios,
	}, nil
}

// Save writes a session file
func (fp *FilePersistence) Save(session *service.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	if err := os.WriteFile(fp.getFilePath(session.ID), data, 0644); err != nil {
		return eris.Wrap(err, "failed to write session file")
	}
	return nil
}

// Load reads a session file and rebuilds the match
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, eris.Wrap(err, "failed to read session file")
	}
	return decodeSession(data, fp.scenarios)
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}
	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return eris.Wrap(err, "failed to remove session file")
	}
	return nil
}

// ListAll returns the IDs of all session files
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read sessions directory")
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, id+".json")
}
