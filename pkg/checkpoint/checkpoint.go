package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ytrelink/pkg/config"
	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
)

// DefaultFileName is used when no checkpoint path is configured
const DefaultFileName = "state.json"

// State is the on-disk checkpoint document
type State struct {
	NextPageToken string `json:"nextPageToken"`
}

// Info summarises the persisted checkpoint for display
type Info struct {
	Path      string
	Token     string
	UpdatedAt time.Time
}

// Store is a single-slot, file-backed checkpoint
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a checkpoint store at path, or at the default location
// in the data directory when path is empty
func NewStore(path string, log logger.Logger) (*Store, error) {
	resolved, err := config.ResolveDataPath(path, DefaultFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve checkpoint path: %w", err)
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Store{
		path:   resolved,
		logger: log,
	}, nil
}

// Path returns the checkpoint file location
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted resumption token, or "" when there is none
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.DebugWithFields("No checkpoint found", map[string]interface{}{
				"path": s.path,
			})
			return "", nil
		}
		return "", errs.Wrap(errs.ErrorTypeStorage, err, "failed to read checkpoint")
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return "", errs.Wrap(errs.ErrorTypeStorage, err, "failed to decode checkpoint %s", s.path)
	}

	s.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"path":  s.path,
		"token": state.NextPageToken,
	})

	return state.NextPageToken, nil
}

// Save durably replaces the checkpoint with token. An empty token deletes
// the checkpoint instead.
func (s *Store) Save(token string) error {
	if token == "" {
		return s.Delete()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to create checkpoint directory")
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to create temporary checkpoint file")
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(State{NextPageToken: token}); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to encode checkpoint")
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to sync checkpoint file")
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to close checkpoint file")
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to replace checkpoint file")
	}

	s.logger.InfoWithFields("Checkpoint saved", map[string]interface{}{
		"path":  s.path,
		"token": token,
	})

	return nil
}

// Delete removes the checkpoint file
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to delete checkpoint")
	}

	s.logger.InfoWithFields("Checkpoint cleared", map[string]interface{}{
		"path": s.path,
	})
	return nil
}

// Exists checks if a checkpoint file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Info returns the persisted token and its modification time, or nil when
// no checkpoint exists
func (s *Store) Info() (*Info, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "failed to stat checkpoint")
	}

	token, err := s.Load()
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:      s.path,
		Token:     token,
		UpdatedAt: stat.ModTime(),
	}, nil
}
