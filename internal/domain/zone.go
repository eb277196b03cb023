package domain

import "time"

// Zone represents a named physical area subject to analysis. Zones are
// defined statically in the registry file and consumed read-only.
type Zone struct {
	// Name uniquely identifies the zone. Used as the enqueue key.
	Name string

	// SnapshotKey locates the zone's latest camera snapshot in the
	// configured snapshot source (a file name or object key).
	SnapshotKey string

	// Context is optional free-text guidance passed to the vision model
	// (e.g. "a hallway; flag anything blocking the exit").
	Context string

	// ScanInterval is how often the periodic loop enqueues a scheduled
	// analysis for this zone. Zero disables periodic scans.
	ScanInterval time.Duration

	// Enabled gates both periodic and manual analyses for the zone.
	Enabled bool
}
