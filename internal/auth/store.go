package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"ytabot/internal/domain"
)

// Store persists one credential record per user.
type Store interface {
	Load(userID string) (*domain.UserCredential, error)
	Save(cred *domain.UserCredential) error
	Delete(userID string) error
}

// FileStore keeps one JSON file per user under a fixed directory. Writes for
// the same user are serialized; concurrent writers for different users do not
// contend. The directory must not be committed to version control.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the token directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) Load(userID string) (*domain.UserCredential, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialCorrupt, err)
	}

	cred := &domain.UserCredential{}
	if err := json.Unmarshal(data, cred); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialCorrupt, err)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: record has no tokens", domain.ErrCredentialCorrupt)
	}

	cred.UserID = userID
	return cred, nil
}

// Save writes the record atomically: temp file in the same directory, fsync,
// rename. A crashed write never leaves a partial record behind.
func (s *FileStore) Save(cred *domain.UserCredential) error {
	if cred == nil || cred.UserID == "" {
		return fmt.Errorf("credential must carry a user id")
	}

	lock := s.userLock(cred.UserID)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close credential: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod credential: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(cred.UserID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename credential: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.path(userID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// path escapes the user ID so free-form values (CLI --user) cannot smuggle
// path separators and escape the token directory.
func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, "token_"+url.PathEscape(userID)+".json")
}

func (s *FileStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
