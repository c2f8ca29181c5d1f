package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sources holds per-site scrape profiles (selectors + request headers).

const (
	WikipediaID = "wikipedia"
	GenericID   = "generic"

	DefaultTitleSelector   = "h1#firstHeading"
	DefaultContentSelector = "div#mw-content-text"
)

// Source describes how to request and parse pages from a family of hosts.
type Source struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	Hosts           []string       `json:"hosts" yaml:"hosts"`
	TitleSelector   string         `json:"title_selector" yaml:"title_selector"`
	ContentSelector string         `json:"content_selector" yaml:"content_selector"`
	Config          map[string]any `json:"config" yaml:"config"`
}

type fileRegistry struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry resolves addresses to source profiles. It is immutable once built.
type Registry struct {
	sources  []Source
	fallback Source
}

// Wikipedia returns the built-in encyclopedia profile.
func Wikipedia() Source {
	return sanitizeSource(Source{
		ID:              WikipediaID,
		Name:            "Wikipedia",
		Hosts:           []string{"wikipedia.org"},
		TitleSelector:   DefaultTitleSelector,
		ContentSelector: DefaultContentSelector,
		Config: map[string]any{
			ConfigAcceptKey:         "text/html,application/xhtml+xml",
			ConfigAcceptLanguageKey: "en-US,en;q=0.9",
		},
	})
}

// DefaultRegistry contains only the built-in profiles.
func DefaultRegistry() *Registry {
	return newRegistry(nil)
}

func newRegistry(extra []Source) *Registry {
	builtins := []Source{Wikipedia()}
	byID := make(map[string]int, len(builtins)+len(extra))
	out := make([]Source, 0, len(builtins)+len(extra))
	for _, s := range builtins {
		byID[s.ID] = len(out)
		out = append(out, s)
	}
	for _, s := range extra {
		if i, ok := byID[s.ID]; ok {
			out[i] = s
			continue
		}
		byID[s.ID] = len(out)
		out = append(out, s)
	}

	fallback := Wikipedia()
	fallback.ID = GenericID
	fallback.Name = "Generic"
	fallback.Hosts = nil

	return &Registry{sources: out, fallback: fallback}
}

// LoadRegistry loads extra profiles from a YAML/JSON file on top of the built-ins.
// An empty path yields the default registry.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultRegistry(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	seen := make(map[string]struct{}, len(reg.Sources))
	for i := range reg.Sources {
		s := sanitizeSource(reg.Sources[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		reg.Sources[i] = s
	}

	return newRegistry(reg.Sources), nil
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg fileRegistry
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return fileRegistry{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s Source) Source {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	s.Name = strings.TrimSpace(s.Name)
	s.TitleSelector = strings.TrimSpace(s.TitleSelector)
	s.ContentSelector = strings.TrimSpace(s.ContentSelector)

	hosts := make([]string, 0, len(s.Hosts))
	for _, h := range s.Hosts {
		h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	s.Hosts = hosts

	if s.TitleSelector == "" {
		s.TitleSelector = DefaultTitleSelector
	}
	if s.ContentSelector == "" {
		s.ContentSelector = DefaultContentSelector
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.ID == GenericID {
		return fmt.Errorf("source id %q is reserved", GenericID)
	}
	if len(s.Hosts) == 0 {
		return fmt.Errorf("at least one host is required for source %q", s.ID)
	}
	return nil
}

// Match returns the profile serving address. The boolean is false when the host is
// not a known source, in which case the generic profile is returned.
func (r *Registry) Match(address string) (Source, bool) {
	if r == nil {
		r = DefaultRegistry()
	}
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return r.fallback, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return r.fallback, false
	}
	for _, s := range r.sources {
		for _, h := range s.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return s, true
			}
		}
	}
	return r.fallback, false
}

// All returns a copy of the registered profiles.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}
