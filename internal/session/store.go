// Package session owns the persisted bearer token and what happens when it expires.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

// ErrNoToken is returned by Store.Load when nothing is persisted
var ErrNoToken = errors.New("session: no token stored")

// KeyringService groups hirepipe secrets in the OS keychain
const KeyringService = "hirepipe"

// Store persists a single bearer token
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// StoreConfig selects and configures a Store backend
type StoreConfig struct {
	Backend   string // keyring, file or memory
	TokenKey  string
	TokenFile string
}

// NewStore builds the Store named by cfg.Backend
func NewStore(cfg StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "keyring":
		return NewKeyringStore(cfg.TokenKey)
	case "file":
		return NewFileStore(cfg.TokenFile)
	case "memory":
		return &MemoryStore{}, nil
	default:
		return nil, fmt.Errorf("session: unknown token store backend %q", cfg.Backend)
	}
}

// KeyringStore keeps the token in the OS keychain
type KeyringStore struct {
	account string
}

func NewKeyringStore(account string) (*KeyringStore, error) {
	if strings.TrimSpace(account) == "" {
		return nil, errors.New("session: keyring account name is empty")
	}
	return &KeyringStore{account: account}, nil
}

func (s *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(KeyringService, s.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("session: read keyring: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *KeyringStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session: token is empty")
	}
	if err := keyring.Set(KeyringService, s.account, token); err != nil {
		return fmt.Errorf("session: write keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(KeyringService, s.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("session: delete keyring entry: %w", err)
	}
	return nil
}

// FileStore keeps the token in a 0600 file guarded by an advisory lock,
// so several hirepipe processes on one host share a session.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: token file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: create token dir: %w", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) Load() (string, error) {
	if err := s.lock.RLock(); err != nil {
		return "", fmt.Errorf("session: lock token file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("session: read token file: %w", err)
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *FileStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session: token is empty")
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("session: lock token file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write token file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("session: lock token file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the token for the life of the process
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
