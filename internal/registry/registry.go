package registry

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
)

// LoadError reports a services file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load services from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Registry holds the enabled targets in configuration order.
type Registry struct {
	targets []Target
}

// New builds a registry from already validated targets.
func New(targets ...Target) *Registry {
	out := make([]Target, len(targets))
	copy(out, targets)
	return &Registry{targets: out}
}

// FromFile loads path and falls back to an empty registry when the file
// cannot be used.
func FromFile(path string, log *slog.Logger) *Registry {
	targets, err := Load(path, log)
	if err != nil {
		log.Error("Failed to load services, monitoring nothing",
			slog.String("path", path),
			slog.Any("err", err))
		return New()
	}

	log.Info("Loaded services",
		slog.String("path", path),
		slog.Int("count", len(targets)))
	return New(targets...)
}

// Load reads the services file and returns the enabled, valid entries.
// Bad entries are logged and skipped; only an unreadable file or a document
// that is not a JSON array yields an error.
func Load(path string, log *slog.Logger) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	targets := make([]Target, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for i, raw := range entries {
		var t Target
		if err := json.Unmarshal(raw, &t); err != nil {
			log.Warn("Skipping malformed service entry",
				slog.Int("index", i),
				slog.Any("err", err))
			continue
		}

		if err := t.Validate(); err != nil {
			log.Warn("Skipping invalid service entry",
				slog.Int("index", i),
				slog.String("name", t.Name),
				slog.Any("err", err))
			continue
		}

		if !t.Enabled {
			log.Debug("Service disabled", slog.String("name", t.Name))
			continue
		}

		if _, dup := seen[t.Name]; dup {
			log.Warn("Skipping duplicate service name",
				slog.Int("index", i),
				slog.String("name", t.Name))
			continue
		}
		seen[t.Name] = struct{}{}

		targets = append(targets, t)
	}

	return targets, nil
}

// Targets returns a copy of the registered targets.
func (r *Registry) Targets() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Names returns the registered service names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.targets))
	for i, t := range r.targets {
		names[i] = t.Name
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.targets)
}
