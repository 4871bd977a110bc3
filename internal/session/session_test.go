package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/attendly/attendly-cli/internal/errs"
	"github.com/attendly/attendly-cli/internal/model"
)

func testSession() *Session {
	return &Session{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Millisecond),
		User:         model.User{ID: 7, Email: "a@b.c", FirstName: "A", LastName: "B"},
	}
}

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func Test_cfgDir_HonorsXDG(t *testing.T) {
	dir := withTmpConfig(t)
	if got := cfgDir(); got != filepath.Join(dir, "attendly") {
		t.Fatalf("cfgDir=%q", got)
	}
	fs := NewFileStore()
	if !strings.HasSuffix(fs.Path(), "session.json") {
		t.Fatalf("unexpected path: %s", fs.Path())
	}
}

func Test_FileStore_SaveLoadClear(t *testing.T) {
	fs := NewFileStoreAt(filepath.Join(t.TempDir(), "session.json"))

	if _, err := fs.Load(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession for missing file, got %v", err)
	}

	want := testSession()
	if err := fs.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("token mismatch: %+v", got)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if got.User.ID != 7 || got.User.Email != "a@b.c" {
		t.Fatalf("user mismatch: %+v", got.User)
	}

	if err := fs.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := fs.Load(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession after clear, got %v", err)
	}
	// clearing twice is fine
	if err := fs.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func Test_FileStore_RejectsPartialRecord(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no refresh": `{"token":"t","tokenExpires":123,"user":{"id":1}}`,
		"no expiry":  `{"token":"t","refreshToken":"r","user":{"id":1}}`,
		"no user":    `{"token":"t","refreshToken":"r","tokenExpires":123}`,
		"garbage":    `{not json`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		fs := NewFileStoreAt(path)
		if _, err := fs.Load(); !errors.Is(err, errs.ErrCorruptSession) {
			t.Fatalf("%s: want ErrCorruptSession, got %v", name, err)
		}
	}
}

func Test_FileStore_FileMode(t *testing.T) {
	fs := NewFileStoreAt(filepath.Join(t.TempDir(), "session.json"))
	if err := fs.Save(testSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file mode = %v, want 0600", info.Mode().Perm())
	}
}

func Test_MemStore(t *testing.T) {
	t.Parallel()

	m := NewMemStore()
	if _, err := m.Load(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
	s := testSession()
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load()
	if err != nil || got.AccessToken != "acc" {
		t.Fatalf("Load: %+v %v", got, err)
	}
	// stored record is a copy, caller mutation must not leak in
	s.AccessToken = "mutated"
	got2, _ := m.Load()
	if got2.AccessToken != "acc" {
		t.Fatalf("store shares memory with caller")
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := m.Load(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession after clear, got %v", err)
	}
}

func Test_Session_Checks(t *testing.T) {
	t.Parallel()

	var nilSess *Session
	if nilSess.Complete() {
		t.Fatalf("nil session must not be complete")
	}
	if nilSess.ExpiresWithin(time.Hour) {
		t.Fatalf("nil session must not report expiry")
	}

	s := testSession()
	if !s.Complete() {
		t.Fatalf("want complete")
	}
	s.RefreshToken = ""
	if s.Complete() {
		t.Fatalf("missing refresh token must not be complete")
	}

	s = testSession()
	s.ExpiresAt = time.Now().Add(2 * time.Minute)
	if !s.ExpiresWithin(5 * time.Minute) {
		t.Fatalf("2m from expiry is within the 5m window")
	}
	if s.ExpiresWithin(time.Minute) {
		t.Fatalf("2m from expiry is outside the 1m window")
	}
}
