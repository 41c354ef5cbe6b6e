package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileJar is a cookie jar that can be written to disk and read back by the next
// run, so the service still recognises us after a restart. Only the cookies
// for the service's base URL are kept.
type FileJar struct {
	*cookiejar.Jar
	path string
	base *url.URL
}

// NewFileJar loads any cookies previously saved at path. A missing file just
// means an empty jar.
func NewFileJar(path string, baseURL string) (*FileJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	fj := &FileJar{Jar: jar, path: path, base: base}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fj, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		// A corrupt jar is the same as being logged out
		return fj, nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	jar.SetCookies(rootURL(base), cookies)

	return fj, nil
}

// Save writes the current cookies for the base URL. The server decides when
// they expire, so only name and value are kept.
func (j *FileJar) Save() error {
	cookies := j.Cookies(j.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	if err := os.WriteFile(j.path, raw, 0o600); err != nil {
		return fmt.Errorf("write cookie jar: %w", err)
	}

	return nil
}

func rootURL(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}
