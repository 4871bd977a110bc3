package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/attendly/attendly-cli/internal/errs"
	"github.com/attendly/attendly-cli/internal/model"
)

// persisted is the on-disk shape of a session. tokenExpires is epoch ms,
// mirroring the wire format of the backend's login/refresh payloads.
type persisted struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	TokenExpires int64      `json:"tokenExpires"`
	User         model.User `json:"user"`
}

// FileStore keeps the session in a single 0600 JSON file under the user's
// config directory.
type FileStore struct {
	path string
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "attendly")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "attendly")
}

// NewFileStore places session.json in the default config dir.
func NewFileStore() *FileStore {
	return &FileStore{path: filepath.Join(cfgDir(), "session.json")}
}

// NewFileStoreAt uses an explicit file path.
func NewFileStoreAt(path string) *FileStore { return &FileStore{path: path} }

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*Session, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.ErrNoSession
		}
		return nil, err
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, errs.ErrCorruptSession
	}
	s := &Session{
		AccessToken:  p.Token,
		RefreshToken: p.RefreshToken,
		User:         p.User,
	}
	if p.TokenExpires != 0 {
		s.ExpiresAt = time.UnixMilli(p.TokenExpires)
	}
	// Partial presence (e.g. token without expiry) invalidates the whole record.
	if !s.Complete() || p.User.ID == 0 {
		return nil, errs.ErrCorruptSession
	}
	return s, nil
}

func (f *FileStore) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	p := persisted{
		Token:        s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenExpires: s.ExpiresAt.UnixMilli(),
		User:         s.User,
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
