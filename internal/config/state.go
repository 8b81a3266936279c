package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SavedCookie is a session cookie as stored on disk.
type SavedCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// State is the client state kept between CLI invocations.
type State struct {
	APIURL  string        `yaml:"api_url"`
	Domain  string        `yaml:"domain,omitempty"`
	Email   string        `yaml:"email,omitempty"`
	Cookies []SavedCookie `yaml:"cookies,omitempty"`
	SavedAt time.Time     `yaml:"saved_at"`
}

// LoadState reads the state file. A missing file yields an empty state.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse state: %w", err)
	}
	return st, nil
}

// SaveState writes the state file, readable by the owner only.
func SaveState(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	st.SavedAt = time.Now().UTC()
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// CaptureCookies copies the cookies jar would send to u into the state.
func (s *State) CaptureCookies(jar http.CookieJar, u *url.URL) {
	s.Cookies = s.Cookies[:0]
	for _, c := range jar.Cookies(u) {
		s.Cookies = append(s.Cookies, SavedCookie{Name: c.Name, Value: c.Value})
	}
}

// RestoreCookies loads the saved cookies into jar for u's host.
// Cookies saved for a different API are ignored.
func (s State) RestoreCookies(jar http.CookieJar, u *url.URL) {
	if len(s.Cookies) == 0 || s.APIURL != u.String() {
		return
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, cookies)
}
