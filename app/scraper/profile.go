package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/drama-comb/app/drama"
)

// Profile carries every site-specific selector and default used by the
// extraction chain. A YAML file may override any subset of it.
type Profile struct {
	TargetURL string `yaml:"target_url"`
	BaseURL   string `yaml:"base_url"`

	Containers       []string `yaml:"containers"`
	FallbackSelector string   `yaml:"fallback_selector"`

	Headings       []string `yaml:"headings"`
	StatusMarkers  []string `yaml:"status_markers"`
	EpisodeMarker  string   `yaml:"episode_marker"`
	Genres         []string `yaml:"genres"`
	Summaries      []string `yaml:"summaries"`
	ExcludedTitles []string `yaml:"excluded_titles"`
	MinTitleLength int      `yaml:"min_title_length"`

	Defaults ProfileDefaults `yaml:"defaults"`
}

type ProfileDefaults struct {
	Episode string `yaml:"episode"`
	Genre   string `yaml:"genre"`
	Summary string `yaml:"summary"`
}

func DefaultProfile() Profile {
	return Profile{
		TargetURL: "https://deeper.id/",
		BaseURL:   "https://deeper.id",
		Containers: []string{
			".drama-item", ".drama-card", ".movie-item", ".film-item",
			".post-item", ".item-drama", "article",
		},
		FallbackSelector: "a:has(img)",
		Headings:         []string{"h1", "h2", "h3", "h4", ".title"},
		StatusMarkers:    []string{".episode", ".episodes", ".eps", ".ep", ".status"},
		EpisodeMarker:    "Ep",
		Genres:           []string{".genre a", ".genres a", ".genre", ".tag"},
		Summaries:        []string{".summary", ".synopsis", ".description", ".excerpt"},
		ExcludedTitles:   []string{"home"},
		MinTitleLength:   3,
		Defaults: ProfileDefaults{
			Episode: drama.DefaultEpisodeLabel,
			Genre:   drama.DefaultGenre,
			Summary: drama.DefaultSummary,
		},
	}
}

// LoadProfile reads a YAML profile and lays it over base: fields the file
// leaves empty keep the base value.
func LoadProfile(path string, base Profile) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var override Profile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Profile{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p := mergeProfile(base, override)
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

func mergeProfile(base, o Profile) Profile {
	p := base
	if o.TargetURL != "" {
		p.TargetURL = o.TargetURL
	}
	if o.BaseURL != "" {
		p.BaseURL = o.BaseURL
	}
	if len(o.Containers) > 0 {
		p.Containers = o.Containers
	}
	if o.FallbackSelector != "" {
		p.FallbackSelector = o.FallbackSelector
	}
	if len(o.Headings) > 0 {
		p.Headings = o.Headings
	}
	if len(o.StatusMarkers) > 0 {
		p.StatusMarkers = o.StatusMarkers
	}
	if o.EpisodeMarker != "" {
		p.EpisodeMarker = o.EpisodeMarker
	}
	if len(o.Genres) > 0 {
		p.Genres = o.Genres
	}
	if len(o.Summaries) > 0 {
		p.Summaries = o.Summaries
	}
	if len(o.ExcludedTitles) > 0 {
		p.ExcludedTitles = o.ExcludedTitles
	}
	if o.MinTitleLength > 0 {
		p.MinTitleLength = o.MinTitleLength
	}
	if o.Defaults.Episode != "" {
		p.Defaults.Episode = o.Defaults.Episode
	}
	if o.Defaults.Genre != "" {
		p.Defaults.Genre = o.Defaults.Genre
	}
	if o.Defaults.Summary != "" {
		p.Defaults.Summary = o.Defaults.Summary
	}
	return p
}

func (p Profile) Validate() error {
	for fieldName, raw := range map[string]string{"target URL": p.TargetURL, "base URL": p.BaseURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s is invalid: %w", fieldName, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", fieldName, raw)
		}
	}

	if len(p.Containers) == 0 {
		return fmt.Errorf("at least one container selector is required")
	}
	if p.FallbackSelector == "" {
		return fmt.Errorf("fallback selector is required")
	}

	requiredDefaults := map[string]string{
		"default episode": p.Defaults.Episode,
		"default genre":   p.Defaults.Genre,
		"default summary": p.Defaults.Summary,
	}
	for fieldName, fieldValue := range requiredDefaults {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	return nil
}

// ProfileStore holds the active profile; it may be swapped while requests
// are being served.
type ProfileStore struct {
	mu      sync.RWMutex
	profile Profile
}

func NewProfileStore(p Profile) *ProfileStore {
	return &ProfileStore{profile: p}
}

func (s *ProfileStore) Get() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *ProfileStore) Set(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Watch reloads the profile from path whenever the file is written, until ctx
// is done. Invalid files are logged and the previous profile stays active.
func (s *ProfileStore) Watch(ctx context.Context, path string, base Profile) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				p, err := LoadProfile(path, base)
				if err != nil {
					slog.Warn("Profile reload failed, keeping previous profile", "path", path, "error", err)
					continue
				}
				s.Set(p)
				slog.Info("Profile reloaded", "path", path, "target_url", p.TargetURL)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Profile watcher error", "path", path, "error", err)
			}
		}
	}()

	return nil
}
