// Package storage reads and writes sales exports, sealing them with age
// when the data directory has been locked with a passphrase.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
	"go.uber.org/zap"
)

const (
	// ageHeader prefixes every age-sealed file
	ageHeader = "age-encryption.org"

	markerFile = ".encrypted"
	verifyFile = ".encryption-verify"

	verifyMagic = `{"magic":"coffeeslides-encryption-verify","version":1}`

	// MinPassphraseLength is the shortest passphrase EnableEncryption accepts
	MinPassphraseLength = 8
)

var (
	// ErrLocked is returned when a sealed file is read before Unlock
	ErrLocked = errors.New("storage is locked")
	// ErrIncorrectPassphrase is returned when the verify file does not open
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
	// ErrNotEncrypted is returned by DisableEncryption on a plain directory
	ErrNotEncrypted = errors.New("encryption is not enabled")
	// ErrAlreadyEncrypted is returned by EnableEncryption on a sealed directory
	ErrAlreadyEncrypted = errors.New("encryption is already enabled")
)

// Storage gives the loader and upload handlers one view of the data
// directory, whether or not its files are sealed.
type Storage struct {
	baseDir   string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
	log       *zap.SugaredLogger
}

// New opens the data directory at baseDir
func New(baseDir string) (*Storage, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", baseDir)
	}

	s := &Storage{
		baseDir: baseDir,
		log:     zap.S().Named("storage"),
	}
	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
		s.log.Infow("Data directory is encrypted", "dir", baseDir)
	}
	return s, nil
}

// BaseDir returns the data directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// IsEncrypted reports whether the data directory carries the marker file
func (s *Storage) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked reports whether reads will succeed
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.identity != nil
}

// Unlock checks passphrase against the verify file and keeps the derived
// key in memory. It is a no-op on a plain directory.
func (s *Storage) Unlock(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}

	identity, recipient, err := s.verify(passphrase)
	if err != nil {
		return err
	}
	s.identity = identity
	s.recipient = recipient
	s.log.Info("Data directory unlocked")
	return nil
}

// verify derives keys from passphrase and proves them on the verify file
func (s *Storage) verify(passphrase string) (*age.ScryptIdentity, *age.ScryptRecipient, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create identity: %w", err)
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create recipient: %w", err)
	}

	sealed, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read verification file: %w", err)
	}
	plain, err := open(sealed, identity)
	if err != nil || string(plain) != verifyMagic {
		return nil, nil, ErrIncorrectPassphrase
	}
	return identity, recipient, nil
}

// Lock forgets the key
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.recipient = nil
}

// ReadFile reads path, opening it first when it is sealed
func (s *Storage) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isSealed(data) {
		return data, nil
	}
	if s.identity == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrLocked)
	}
	return open(data, s.identity)
}

// WriteFile writes path atomically, sealing it when the directory is
// encrypted and unlocked
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encrypted && !s.skip(path) {
		if s.recipient == nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), ErrLocked)
		}
		sealed, err := seal(data, s.recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = sealed
	}
	return atomicWrite(path, data, perm)
}

// OpenFile returns a reader over the plain contents of path
func (s *Storage) OpenFile(path string) (io.ReadCloser, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Stat returns file info
func (s *Storage) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Glob returns files matching a pattern
func (s *Storage) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// MkdirAll creates a directory and all parents
func (s *Storage) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove deletes a file
func (s *Storage) Remove(path string) error {
	return os.Remove(path)
}

// skip reports files that are never sealed: the marker, the verify file
// and anything under a cache directory
func (s *Storage) skip(path string) bool {
	switch filepath.Base(path) {
	case markerFile, verifyFile:
		return true
	}
	slashed := filepath.ToSlash(path)
	return strings.Contains(slashed, "/cache/")
}

// atomicWrite writes to a sibling temp file and renames it over path
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
