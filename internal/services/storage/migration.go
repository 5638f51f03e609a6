package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// sealable lists the extensions EnableEncryption rewrites
var sealable = map[string]bool{
	".csv":  true,
	".json": true,
}

// EnableEncryption seals every CSV and JSON file under the data directory
// with passphrase and leaves the directory unlocked. A failure part way
// through restores the files already sealed.
func (s *Storage) EnableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(passphrase) < MinPassphraseLength {
		return fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	sealedMagic, err := seal([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := os.WriteFile(verifyPath, sealedMagic, 0644); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	files, err := s.collect(func(path string) bool {
		return !s.skip(path) && sealable[strings.ToLower(filepath.Ext(path))]
	})
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for i, path := range files {
		if err := rewrite(path, func(data []byte) ([]byte, error) {
			if isSealed(data) {
				return nil, nil
			}
			return seal(data, recipient)
		}); err != nil {
			s.restore(files[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := os.WriteFile(filepath.Join(s.baseDir, markerFile), []byte("encrypted"), 0644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	s.log.Infow("Encryption enabled", "files", len(files))
	return nil
}

// DisableEncryption opens every sealed file in place and removes the
// marker and verify files
func (s *Storage) DisableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return ErrNotEncrypted
	}
	identity, _, err := s.verify(passphrase)
	if err != nil {
		return err
	}

	files, err := s.collect(func(path string) bool {
		data, err := os.ReadFile(path)
		return err == nil && isSealed(data)
	})
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for _, path := range files {
		if err := rewrite(path, func(data []byte) ([]byte, error) {
			return open(data, identity)
		}); err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	s.log.Infow("Encryption disabled", "files", len(files))
	return nil
}

// collect walks the data directory for regular files matching keep
func (s *Storage) collect(keep func(path string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) == verifyFile {
			return nil
		}
		if keep(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// rewrite replaces the contents of path with fn's output. A nil result
// leaves the file untouched.
func rewrite(path string, fn func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil || out == nil {
		return err
	}
	return atomicWrite(path, out, 0644)
}

// restore opens files sealed during a failed EnableEncryption
func (s *Storage) restore(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		if err := rewrite(path, func(data []byte) ([]byte, error) {
			if !isSealed(data) {
				return nil, nil
			}
			return open(data, identity)
		}); err != nil {
			s.log.Warnw("Failed to restore file after aborted encryption", "file", path, "error", err)
		}
	}
}
