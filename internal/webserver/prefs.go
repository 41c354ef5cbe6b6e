package webserver

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lachlan2k/shiptrack/internal/models"
)

// PrefsStore keeps everyone's notification preferences in one JSON file,
// keyed by lowercased email and role.
type PrefsStore struct {
	path string
	mu   sync.Mutex
}

func NewPrefsStore(path string) *PrefsStore {
	return &PrefsStore{path: path}
}

func prefKey(email string, role string) string {
	return strings.ToLower(email) + "::" + role
}

// Get returns all-off for users who never saved anything.
func (p *PrefsStore) Get(email string, role string) (models.Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		return models.Preferences{}, err
	}

	return all[prefKey(email, role)], nil
}

func (p *PrefsStore) Put(email string, role string, prefs models.Preferences) (models.Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		return models.Preferences{}, err
	}

	all[prefKey(email, role)] = prefs

	if err := p.save(all); err != nil {
		return models.Preferences{}, err
	}

	return prefs, nil
}

func (p *PrefsStore) load() (map[string]models.Preferences, error) {
	all := make(map[string]models.Preferences)

	raw, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, err
	}

	// A mangled file gets overwritten on the next save rather than wedging the server
	if err := json.Unmarshal(raw, &all); err != nil {
		return make(map[string]models.Preferences), nil
	}

	return all, nil
}

func (p *PrefsStore) save(all map[string]models.Preferences) error {
	raw, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(p.path, raw, 0o644)
}
