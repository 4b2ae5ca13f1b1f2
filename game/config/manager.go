package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/scenario"
	"github.com/wricardo/grid-tactics/game/service"
	"github.com/wricardo/grid-tactics/pkg/logger"
)

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrJobNotFound      = errors.New("job not found")
	ErrInvalidScenario  = scenario.ErrInvalidScenario
	ErrReadOnly         = errors.New("no scenario directory configured")
)

// DefaultScenarioID is tried first when picking the default scenario.
const DefaultScenarioID = "warehouse"

// Sources reported in ScenarioInfo.
const (
	SourceFile     = "file"
	SourceEmbedded = "embedded"
	SourceJob      = "job"
)

const jobsDir = "jobs"

//go:embed defaults
var embedded embed.FS

// Manager handles scenario and job loading and caching. Files in the scenario
// directory shadow the embedded defaults with the same id.
type Manager struct {
	scenarioDir     string
	sources         []source
	defaultScenario *scenario.Definition
	scenarios       map[string]*scenario.Definition
	jobs            map[string]*scenario.Job
	log             logrus.FieldLogger
	mu              sync.RWMutex
}

// source is one place scenarios are read from. Scenario files sit at the
// root of fsys and job files under jobs/.
type source struct {
	name string
	fsys fs.FS
}

// NewManager creates a new scenario manager. An empty scenarioDir serves the
// embedded scenarios only.
func NewManager(scenarioDir string) (*Manager, error) {
	m := &Manager{
		scenarioDir: scenarioDir,
		scenarios:   make(map[string]*scenario.Definition),
		jobs:        make(map[string]*scenario.Job),
		log:         logger.Component("config"),
	}

	if scenarioDir != "" {
		if _, err := os.Stat(scenarioDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario directory does not exist: %s", scenarioDir)
		}
		m.sources = append(m.sources, source{name: SourceFile, fsys: os.DirFS(scenarioDir)})
	}
	defaults, err := fs.Sub(embedded, "defaults")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded scenarios: %w", err)
	}
	m.sources = append(m.sources, source{name: SourceEmbedded, fsys: defaults})

	if err := m.loadDefaultScenario(); err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}
	return m, nil
}

// LoadScenario loads a scenario by id. Ids of the form "job/scenario" resolve
// to a scenario embedded in a job.
func (m *Manager) LoadScenario(id string) (*scenario.Definition, error) {
	if _, err := scenario.FormatFor(id); err == nil {
		id = strings.TrimSuffix(id, path.Ext(id))
	}
	if id == "" {
		return nil, ErrScenarioNotFound
	}

	m.mu.RLock()
	// Check cache first
	if def, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return def, nil
	}
	m.mu.RUnlock()

	if jobID, scenarioID, ok := strings.Cut(id, "/"); ok {
		job, err := m.LoadJob(jobID)
		if err != nil {
			return nil, err
		}
		def, found := job.Scenario(scenarioID)
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		return def, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if def, exists := m.scenarios[id]; exists {
		return def, nil
	}

	def, err := m.readScenario(id)
	if err != nil {
		return nil, err
	}
	m.scenarios[id] = def
	return def, nil
}

// readScenario finds id in the first source that has it.
func (m *Manager) readScenario(id string) (*scenario.Definition, error) {
	for _, src := range m.sources {
		for _, ext := range scenario.Extensions {
			name := id + ext
			if _, err := fs.Stat(src.fsys, name); err != nil {
				continue
			}
			return scenario.LoadFS(src.fsys, name)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
}

// ListScenarios returns information about all available scenarios, including
// the ones offered by jobs. Invalid files are skipped.
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	seen := make(map[string]bool)
	var infos []*service.ScenarioInfo

	for _, src := range m.sources {
		entries, err := fs.ReadDir(src.fsys, ".")
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := scenario.FormatFor(entry.Name()); err != nil {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
			if seen[id] {
				continue
			}
			def, err := m.LoadScenario(id)
			if err != nil {
				m.log.WithError(err).WithField("file", entry.Name()).Warn("Skipping invalid scenario")
				continue
			}
			seen[id] = true
			info := scenarioInfo(id, def, src.name)
			info.Filename = entry.Name()
			infos = append(infos, info)
		}
	}

	jobs, err := m.loadJobs()
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		for i := range job.Scenarios {
			def := &job.Scenarios[i]
			infos = append(infos, scenarioInfo(job.ID+"/"+def.ID, def, SourceJob))
		}
	}

	sort.SliceStable(infos, func(i, j int) bool { return infos[i].ScenarioID < infos[j].ScenarioID })
	return infos, nil
}

func scenarioInfo(id string, def *scenario.Definition, src string) *service.ScenarioInfo {
	return &service.ScenarioInfo{
		ScenarioID:   id,
		Name:         def.Name,
		Description:  def.Description,
		MinigameType: def.MinigameType,
		Width:        def.Grid.Width,
		Height:       def.Grid.Height,
		Entities:     len(def.Entities),
		MaxTurns:     def.Config.MaxTurns,
		Source:       src,
	}
}

// LoadJob loads a job by id
func (m *Manager) LoadJob(id string) (*scenario.Job, error) {
	m.mu.RLock()
	if job, exists := m.jobs[id]; exists {
		m.mu.RUnlock()
		return job, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[id]; exists {
		return job, nil
	}

	for _, src := range m.sources {
		for _, ext := range scenario.Extensions {
			name := path.Join(jobsDir, id+ext)
			if _, err := fs.Stat(src.fsys, name); err != nil {
				continue
			}
			job, err := scenario.LoadJobFS(src.fsys, name)
			if err != nil {
				return nil, err
			}
			m.jobs[id] = job
			return job, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// ListJobs returns every job with the qualified ids of its scenarios
func (m *Manager) ListJobs() ([]*service.JobInfo, error) {
	jobs, err := m.loadJobs()
	if err != nil {
		return nil, err
	}
	infos := make([]*service.JobInfo, 0, len(jobs))
	for _, job := range jobs {
		info := &service.JobInfo{ID: job.ID, Name: job.Name, Description: job.Description}
		for _, def := range job.Scenarios {
			info.Scenarios = append(info.Scenarios, job.ID+"/"+def.ID)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// loadJobs loads every job file, sorted by id.
func (m *Manager) loadJobs() ([]*scenario.Job, error) {
	seen := make(map[string]bool)
	var jobs []*scenario.Job
	for _, src := range m.sources {
		entries, err := fs.ReadDir(src.fsys, jobsDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read jobs directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := scenario.FormatFor(entry.Name()); err != nil {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
			if seen[id] {
				continue
			}
			job, err := m.LoadJob(id)
			if err != nil {
				m.log.WithError(err).WithField("file", entry.Name()).Warn("Skipping invalid job")
				continue
			}
			seen[id] = true
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *scenario.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by id
func (m *Manager) SetDefault(id string) error {
	def, err := m.LoadScenario(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = def
	return nil
}

// RefreshCache drops every cached scenario and job and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.scenarios = make(map[string]*scenario.Definition)
	m.jobs = make(map[string]*scenario.Job)
	m.mu.Unlock()

	return m.loadDefaultScenario()
}

// loadDefaultScenario loads the default scenario
func (m *Manager) loadDefaultScenario() error {
	def, err := m.LoadScenario(DefaultScenarioID)
	if err != nil {
		// Try the first available scenario
		infos, listErr := m.ListScenarios()
		if listErr != nil || len(infos) == 0 {
			def = minimalScenario()
		} else if def, err = m.LoadScenario(infos[0].ScenarioID); err != nil {
			def = minimalScenario()
		}
	}

	m.mu.Lock()
	m.defaultScenario = def
	m.mu.Unlock()
	return nil
}

// SaveScenario validates def and writes it to the scenario directory. The
// extension of id picks the format, JSON when absent.
func (m *Manager) SaveScenario(id string, def *scenario.Definition) error {
	if m.scenarioDir == "" {
		return ErrReadOnly
	}
	if err := scenario.Validate(def); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	filename := id
	format, err := scenario.FormatFor(filename)
	if err != nil {
		filename = id + ".json"
		format = scenario.FormatJSON
	}
	id = strings.TrimSuffix(filename, filepath.Ext(filename))
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: id %q must not contain path separators", ErrInvalidScenario, id)
	}

	data, err := scenario.Marshal(def, format)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.scenarioDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[id] = def
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"scenario_id": id, "file": filename}).Info("Scenario saved")
	return nil
}

// minimalScenario is the fallback when no scenario can be loaded.
func minimalScenario() *scenario.Definition {
	return &scenario.Definition{
		ID:           "default",
		Name:         "Default",
		Description:  "Default minimal scenario",
		MinigameType: scenario.TypeObstacle,
		Grid:         scenario.GridConfig{Width: 10, Height: 10},
		Entities: []scenario.Placement{{
			Type:     scenario.EntityCharacter,
			Position: engine.Position{X: 0, Y: 1},
			Properties: scenario.Properties{
				"name":       "Scout",
				"attributes": engine.Attributes{Pwr: 2, Mov: 3},
			},
		}},
		WinConditions: []scenario.WinCondition{{Type: scenario.WinAllInExit, Description: "Reach the exit"}},
	}
}
