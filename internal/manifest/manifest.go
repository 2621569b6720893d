// Package manifest records what a pipeline run read and wrote.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/afmtool-cli/internal/utils"
	"github.com/google/uuid"
)

const (
	fileName = "manifest.json"
)

// Manifest describes one run persisted next to its outputs.
type Manifest struct {
	ID        string               `json:"id"`
	Command   string               `json:"command"`
	Inputs    []string             `json:"inputs"`
	Artifacts map[string]*Artifact `json:"artifacts"`
	Failures  []Failure            `json:"failures,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

// New constructs an in-memory manifest. Call Save() to persist.
func New(command, rootDir string, inputs []string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Command:   command,
		Inputs:    append([]string(nil), inputs...),
		Artifacts: make(map[string]*Artifact),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the directory the manifest is saved in.
func (m *Manifest) RootDir() string { return m.rootDir }

// Path returns the manifest file location.
func (m *Manifest) Path() string { return filepath.Join(m.rootDir, fileName) }

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}

// Add records a written file. Adding the same path again refreshes its entry.
func (m *Manifest) Add(kind Kind, path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]*Artifact)
	}
	for _, a := range m.Artifacts {
		if a.Path == path {
			a.Kind, a.Size, a.CreatedAt = kind, info.Size(), info.ModTime()
			return a, nil
		}
	}
	a := &Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}
	m.Artifacts[a.ID] = a
	m.UpdatedAt = time.Now()
	return a, nil
}

// Fail records an input that could not be processed.
func (m *Manifest) Fail(path string, err error) {
	m.Failures = append(m.Failures, Failure{Path: path, Error: err.Error()})
	m.UpdatedAt = time.Now()
}

// Sorted returns the artifacts ordered by path.
func (m *Manifest) Sorted() []*Artifact {
	out := make([]*Artifact, 0, len(m.Artifacts))
	for _, a := range m.Artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ByKind returns the artifacts of one kind, ordered by path.
func (m *Manifest) ByKind(kind Kind) []*Artifact {
	var out []*Artifact
	for _, a := range m.Sorted() {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
