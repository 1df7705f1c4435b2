// Package storage persists rendered invoice documents and issues
// time-limited signed retrieval URLs for them.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPath  = errors.New("invalid storage path")
	ErrBadSignature = errors.New("bad or expired signature")
)

// FileStore keeps objects on the local filesystem under BaseDir and signs
// retrieval URLs with an HMAC over path and expiry.
type FileStore struct {
	BaseDir string
	BaseURL string
	Secret  []byte
	Now     func() time.Time
}

func NewFileStore(baseDir, baseURL, secret string) *FileStore {
	return &FileStore{BaseDir: baseDir, BaseURL: strings.TrimRight(baseURL, "/"), Secret: []byte(secret), Now: time.Now}
}

// Put writes data under path, creating parent directories. Overwrite-safe:
// a retried dispatch re-writes the same deterministic path.
func (s *FileStore) Put(path string, data []byte) error {
	clean, err := s.cleanPath(path)
	if err != nil {
		return err
	}
	full := filepath.Join(s.BaseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("storage write %s: %w", clean, err)
	}
	return nil
}

// Get reads an object back.
func (s *FileStore) Get(path string) ([]byte, error) {
	clean, err := s.cleanPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.BaseDir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("storage read %s: %w", clean, err)
	}
	return data, nil
}

// SignedURL returns a retrieval URL valid for ttl.
func (s *FileStore) SignedURL(path string, ttl time.Duration) (string, error) {
	clean, err := s.cleanPath(path)
	if err != nil {
		return "", err
	}
	exp := s.Now().Add(ttl).Unix()
	sig := s.sign(clean, exp)
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/%s?%s", s.BaseURL, clean, q.Encode()), nil
}

// Verify checks a signature produced by SignedURL against path and expiry.
func (s *FileStore) Verify(path string, exp int64, sig string) error {
	clean, err := s.cleanPath(path)
	if err != nil {
		return err
	}
	if s.Now().Unix() > exp {
		return ErrBadSignature
	}
	expected := s.sign(clean, exp)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return ErrBadSignature
	}
	return nil
}

func (s *FileStore) sign(path string, exp int64) string {
	mac := hmac.New(sha256.New, s.Secret)
	fmt.Fprintf(mac, "%s|%d", path, exp)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// cleanPath normalizes and rejects traversal outside BaseDir.
func (s *FileStore) cleanPath(p string) (string, error) {
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, "/../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}
