package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Errors for preference operations
var (
	ErrNoPath = errors.New("preferences path not configured")
)

// BaselineEntry captures what the user last saw of one entity. Purely
// cosmetic: it drives "what's new" badges and has no bearing on filter
// correctness.
type BaselineEntry struct {
	ObservationCount int       `yaml:"observation_count" json:"observationCount"`
	LastModified     time.Time `yaml:"last_modified,omitempty" json:"lastModified,omitempty"`
}

// Preferences are the persisted viewer selections that survive reload
type Preferences struct {
	SelectedTeams []string                 `yaml:"selected_teams" json:"selectedTeams"`
	DataSource    string                   `yaml:"data_source" json:"dataSource"`
	Baseline      map[string]BaselineEntry `yaml:"baseline,omitempty" json:"baseline,omitempty"`
}

// Store persists preferences to a YAML file. Writes go through a temp
// file and rename so a crash never truncates the previous state.
type Store struct {
	path  string
	mu    sync.RWMutex
	prefs Preferences
}

// NewStore creates a store backed by the given file, loading existing
// preferences if the file is present
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, ErrNoPath
	}

	s := &Store{
		path: path,
		prefs: Preferences{
			DataSource: "combined",
			Baseline:   make(map[string]BaselineEntry),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.prefs); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}
	if s.prefs.Baseline == nil {
		s.prefs.Baseline = make(map[string]BaselineEntry)
	}
	return s, nil
}

// Get returns a copy of the current preferences
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Preferences {
	out := Preferences{
		SelectedTeams: make([]string, len(s.prefs.SelectedTeams)),
		DataSource:    s.prefs.DataSource,
		Baseline:      make(map[string]BaselineEntry, len(s.prefs.Baseline)),
	}
	copy(out.SelectedTeams, s.prefs.SelectedTeams)
	for k, v := range s.prefs.Baseline {
		out.Baseline[k] = v
	}
	return out
}

// SetTeams updates the selected teams and persists
func (s *Store) SetTeams(teams []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.SelectedTeams = make([]string, len(teams))
	copy(s.prefs.SelectedTeams, teams)
	return s.saveLocked()
}

// SetDataSource updates the data source mode and persists
func (s *Store) SetDataSource(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.DataSource = source
	return s.saveLocked()
}

// UpdateBaseline records the current observation counts of a snapshot
// as the new baseline and persists
func (s *Store) UpdateBaseline(snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline := make(map[string]BaselineEntry, snap.EntityCount())
	for _, e := range snap.Entities() {
		baseline[e.Name] = BaselineEntry{
			ObservationCount: len(e.Observations),
			LastModified:     e.Provenance.LastModified,
		}
	}
	s.prefs.Baseline = baseline
	return s.saveLocked()
}

// WhatsNew returns the names of entities that are new or have grown
// since the stored baseline
func (s *Store) WhatsNew(snap *model.Snapshot) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	changed := make([]string, 0)
	for _, e := range snap.Entities() {
		entry, seen := s.prefs.Baseline[e.Name]
		if !seen || len(e.Observations) > entry.ObservationCount {
			changed = append(changed, e.Name)
			continue
		}
		if !e.Provenance.LastModified.IsZero() && e.Provenance.LastModified.After(entry.LastModified) {
			changed = append(changed, e.Name)
		}
	}
	return changed
}

func (s *Store) saveLocked() error {
	data, err := yaml.Marshal(&s.prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}
	return nil
}
