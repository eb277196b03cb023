// Package registry loads and serves the static zone configuration. Zones
// are defined in a YAML file and consumed read-only by the executor, the
// periodic scan loop, and the HTTP surface.
package registry

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zonewatch/zonewatch/internal/domain"
)

// ErrUnknownZone is returned by Lookup for names not in the registry.
var ErrUnknownZone = errors.New("unknown zone")

// zoneFile is the YAML shape of the registry file.
type zoneFile struct {
	Zones []zoneEntry `yaml:"zones"`
}

type zoneEntry struct {
	Name        string `yaml:"name"`
	SnapshotKey string `yaml:"snapshotKey"`
	Context     string `yaml:"context"`
	// ScanInterval is a Go duration string ("5m", "1h30m"). Omitted inherits
	// the global default; "0" makes the zone manual-only.
	ScanInterval string `yaml:"scanInterval"`
	Enabled      *bool  `yaml:"enabled"` // defaults to true when omitted
}

// Registry holds the zone set loaded at startup. It is immutable after Load,
// so reads need no locking.
type Registry struct {
	zones map[string]domain.Zone
	order []string
}

// Load reads and validates the zone registry file. Zones with no explicit
// scan interval get defaultScanInterval; an interval of 0 in the file keeps
// the zone manual-only.
func Load(path string, defaultScanInterval time.Duration) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone file: %w", err)
	}
	return Parse(data, defaultScanInterval)
}

// Parse builds a registry from raw YAML. Split out from Load for tests.
func Parse(data []byte, defaultScanInterval time.Duration) (*Registry, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse zone file: %w", err)
	}
	if len(f.Zones) == 0 {
		return nil, fmt.Errorf("zone file defines no zones")
	}

	r := &Registry{zones: make(map[string]domain.Zone, len(f.Zones))}
	for i, e := range f.Zones {
		if e.Name == "" {
			return nil, fmt.Errorf("zone %d: name is required", i)
		}
		if _, dup := r.zones[e.Name]; dup {
			return nil, fmt.Errorf("zone %q: duplicate name", e.Name)
		}
		if e.SnapshotKey == "" {
			return nil, fmt.Errorf("zone %q: snapshotKey is required", e.Name)
		}

		interval := defaultScanInterval
		if e.ScanInterval != "" {
			d, err := time.ParseDuration(e.ScanInterval)
			if err != nil {
				return nil, fmt.Errorf("zone %q: invalid scanInterval: %w", e.Name, err)
			}
			if d < 0 {
				return nil, fmt.Errorf("zone %q: scanInterval must not be negative", e.Name)
			}
			interval = d
		}

		enabled := true
		if e.Enabled != nil {
			enabled = *e.Enabled
		}

		r.zones[e.Name] = domain.Zone{
			Name:         e.Name,
			SnapshotKey:  e.SnapshotKey,
			Context:      e.Context,
			ScanInterval: interval,
			Enabled:      enabled,
		}
		r.order = append(r.order, e.Name)
	}
	return r, nil
}

// Lookup returns the zone with the given name.
func (r *Registry) Lookup(name string) (domain.Zone, error) {
	z, ok := r.zones[name]
	if !ok {
		return domain.Zone{}, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return z, nil
}

// List returns all zones in file order.
func (r *Registry) List() []domain.Zone {
	out := make([]domain.Zone, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.zones[name])
	}
	return out
}

// Len returns the number of registered zones.
func (r *Registry) Len() int {
	return len(r.zones)
}
