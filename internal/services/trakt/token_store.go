package trakt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"starrlist/internal/services"
)

// TokenRecord is the persisted Trakt token pair. It mirrors the token
// endpoint response, so a successful exchange can be saved wholesale and a
// reload round-trips to an identical record.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CreatedAt    int64  `json:"created_at"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Complete reports whether all four fields required for a usable record are
// present.
func (r TokenRecord) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.CreatedAt > 0 && r.ExpiresIn > 0
}

// ExpiresAtUnix returns the epoch second after which the access token is no
// longer accepted.
func (r TokenRecord) ExpiresAtUnix() int64 {
	return r.CreatedAt + r.ExpiresIn
}

// TokenStore abstracts persistence for the Trakt token record.
type TokenStore interface {
	Load() (TokenRecord, bool, error)
	Save(TokenRecord) error
}

// FileTokenStore writes the token record to a JSON file on disk. Writes go
// through a lock file and a rename, so a concurrent hook invocation reads
// either the old or the new record, never a partial one.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the token record from disk. A missing file reports found=false
// without an error; an unreadable record is a parse failure.
func (s *FileTokenStore) Load() (TokenRecord, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TokenRecord{}, false, nil
		}
		return TokenRecord{}, false, fmt.Errorf("read trakt tokens: %w", err)
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return TokenRecord{}, false, fmt.Errorf("%w: decode trakt tokens: %w", services.ErrParse, err)
	}
	return record, true, nil
}

// Save persists the token record with restricted permissions, replacing any
// previous record wholesale.
func (s *FileTokenStore) Save(record TokenRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ensure token directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock token file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trakt tokens: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".trakt_tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write trakt tokens: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("restrict token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}
