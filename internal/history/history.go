package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/KaramelBytes/adbudget-cli/internal/report"
	"github.com/KaramelBytes/adbudget-cli/internal/utils"
	"github.com/google/uuid"
)

const runExt = ".json"

// ErrNotFound is returned when no saved run matches an ID.
var ErrNotFound = errors.New("run not found")

// Run is a saved recommendation run.
type Run struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	Rules     advisor.Rules   `json:"rules"`
	Document  report.Document `json:"document"`
}

// Store persists runs as one JSON file each under a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the on-disk location of the store.
func (s *Store) Dir() string { return s.dir }

// NewRun builds an unsaved run for a rendered report.
func NewRun(source string, rules advisor.Rules, rep *report.Report) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Rules:     rules,
		Document:  rep.Document(),
	}
}

// Save writes the run using atomic write.
func (s *Store) Save(r *Run) error {
	if s.dir == "" {
		return errors.New("runs directory not set")
	}
	if r.ID == "" {
		return errors.New("run has no id")
	}
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.dir, r.ID+runExt), data)
}

// Load reads a run by full ID or by a unique ID prefix.
func (s *Store) Load(id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	r, err := s.read(filepath.Join(s.dir, id+runExt))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	var match []string
	for _, cand := range ids {
		if strings.HasPrefix(cand, id) {
			match = append(match, cand)
		}
	}
	switch len(match) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return s.read(filepath.Join(s.dir, match[0]+runExt))
	default:
		return nil, fmt.Errorf("ambiguous run id %q matches %d runs", id, len(match))
	}
}

// List returns all saved runs, newest first. A missing directory yields no runs.
func (s *Store) List() ([]*Run, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		r, err := s.read(filepath.Join(s.dir, id+runExt))
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// Delete removes a saved run.
func (s *Store) Delete(id string) error {
	r, err := s.Load(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, r.ID+runExt)); err != nil {
		return fmt.Errorf("remove run: %w", err)
	}
	return nil
}

func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != runExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), runExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) read(path string) (*Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}
