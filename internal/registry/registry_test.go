package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleZones = `
zones:
  - name: Kitchen
    snapshotKey: cams/kitchen/latest.jpg
    context: Commercial kitchen, staff present 6am-10pm
    scanInterval: 5m
  - name: Loading Dock
    snapshotKey: cams/dock/latest.jpg
    scanInterval: "0"
  - name: Garage
    snapshotKey: cams/garage/latest.jpg
    enabled: false
  - name: Porch
    snapshotKey: cams/porch/latest.jpg
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sampleZones), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())

	kitchen, err := r.Lookup("Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "cams/kitchen/latest.jpg", kitchen.SnapshotKey)
	assert.Equal(t, "Commercial kitchen, staff present 6am-10pm", kitchen.Context)
	assert.Equal(t, 5*time.Minute, kitchen.ScanInterval)
	assert.True(t, kitchen.Enabled)

	// Explicit zero interval means manual-only, not the default.
	dock, err := r.Lookup("Loading Dock")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), dock.ScanInterval)

	garage, err := r.Lookup("Garage")
	require.NoError(t, err)
	assert.False(t, garage.Enabled)

	// Omitted interval inherits the default.
	porch, err := r.Lookup("Porch")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, porch.ScanInterval)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty file",
			yaml: "",
		},
		{
			name: "no zones",
			yaml: "zones: []",
		},
		{
			name: "missing name",
			yaml: `
zones:
  - snapshotKey: cams/x/latest.jpg
`,
		},
		{
			name: "missing snapshot key",
			yaml: `
zones:
  - name: Kitchen
`,
		},
		{
			name: "duplicate name",
			yaml: `
zones:
  - name: Kitchen
    snapshotKey: a.jpg
  - name: Kitchen
    snapshotKey: b.jpg
`,
		},
		{
			name: "bad interval",
			yaml: `
zones:
  - name: Kitchen
    snapshotKey: a.jpg
    scanInterval: five minutes
`,
		},
		{
			name: "negative interval",
			yaml: `
zones:
  - name: Kitchen
    snapshotKey: a.jpg
    scanInterval: -5m
`,
		},
		{
			name: "not yaml",
			yaml: "{zones: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), 15*time.Minute)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleZones), 0o644))

	r, err := Load(path, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), time.Minute)
	assert.Error(t, err)
}

func TestLookup_UnknownZone(t *testing.T) {
	r, err := Parse([]byte(sampleZones), time.Minute)
	require.NoError(t, err)

	_, err = r.Lookup("Basement")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestList_PreservesFileOrder(t *testing.T) {
	r, err := Parse([]byte(sampleZones), time.Minute)
	require.NoError(t, err)

	var names []string
	for _, z := range r.List() {
		names = append(names, z.Name)
	}
	assert.Equal(t, []string{"Kitchen", "Loading Dock", "Garage", "Porch"}, names)
}
