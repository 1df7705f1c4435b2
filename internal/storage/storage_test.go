package storage

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), "http://localhost:8080/files", "test-secret")
}

func TestPutGetRoundtrip(t *testing.T) {
	s := newTestStore(t)
	data := []byte("%PDF-1.7 fake")
	if err := s.Put("invoices/FAC-2026-0001_Dupont.pdf", data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("invoices/FAC-2026-0001_Dupont.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("roundtrip mismatch: %q", got)
	}
	// Overwrite-safe: a retried dispatch re-writes the same path.
	if err := s.Put("invoices/FAC-2026-0001_Dupont.pdf", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get("invoices/FAC-2026-0001_Dupont.pdf")
	if string(got) != "v2" {
		t.Errorf("overwrite not applied: %q", got)
	}
}

func TestSignedURLVerify(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put("invoices/x.pdf", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := s.SignedURL("invoices/x.pdf", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasPrefix(raw, "http://localhost:8080/files/invoices/x.pdf?") {
		t.Errorf("unexpected url: %s", raw)
	}
	exp, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("exp: %v", err)
	}
	if err := s.Verify("invoices/x.pdf", exp, u.Query().Get("sig")); err != nil {
		t.Errorf("Verify: %v", err)
	}
	// Tampered signature fails.
	if err := s.Verify("invoices/x.pdf", exp, "forged"); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
	// Signature bound to the path.
	if err := s.Verify("invoices/other.pdf", exp, u.Query().Get("sig")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature for other path, got %v", err)
	}
}

func TestSignedURLExpiry(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.Now = func() time.Time { return now }
	raw, err := s.SignedURL("invoices/x.pdf", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	u, _ := url.Parse(raw)
	exp, _ := strconv.ParseInt(u.Query().Get("exp"), 10, 64)

	// Two hours later the link is dead.
	s.Now = func() time.Time { return now.Add(2 * time.Hour) }
	if err := s.Verify("invoices/x.pdf", exp, u.Query().Get("sig")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature after expiry, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"", "..", "../etc/passwd", "a/../../b"} {
		if err := s.Put(p, []byte("x")); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Put(%q): expected ErrInvalidPath, got %v", p, err)
		}
	}
}
