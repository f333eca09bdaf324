package toy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore keeps toys in memory, optionally persisted to a JSON file.
// It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	toys        map[string]Toy
	pageSize    int
	dataFile    string    // Path to persistent storage file
	fileModTime time.Time // Last modification time of the data file
	now         func() time.Time
}

// NewMemoryStore creates a store. dataFile may be empty to keep toys in
// memory only; otherwise existing toys are loaded from it.
func NewMemoryStore(dataFile string, pageSize int) (*MemoryStore, error) {
	s := &MemoryStore{
		toys:     make(map[string]Toy),
		pageSize: pageSize,
		dataFile: dataFile,
		now:      time.Now,
	}
	if dataFile != "" {
		if err := s.loadFromFile(); err != nil {
			return nil, errors.Wrapf(err, "load %s", dataFile)
		}
	}
	return s, nil
}

// loadFromFile replaces the in-memory toys with the content of the data file.
func (s *MemoryStore) loadFromFile() error {
	fileInfo, err := os.Stat(s.dataFile)
	if os.IsNotExist(err) {
		// File doesn't exist, start empty
		return nil
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(s.dataFile)
	if err != nil {
		return err
	}

	var toys []Toy
	if len(data) > 0 {
		if err := json.Unmarshal(data, &toys); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fileModTime = fileInfo.ModTime()
	s.toys = make(map[string]Toy, len(toys))
	for _, t := range toys {
		s.toys[t.ID] = t
	}
	return nil
}

// saveToFile writes all toys to the data file. Callers hold the write lock.
func (s *MemoryStore) saveToFile() error {
	if s.dataFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.listInternal(), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.dataFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.dataFile, data, 0644); err != nil {
		return err
	}
	if info, err := os.Stat(s.dataFile); err == nil {
		s.fileModTime = info.ModTime()
	}
	return nil
}

// refresh reloads the data file when another process (the CLI, usually)
// changed it since the last load.
func (s *MemoryStore) refresh() error {
	if s.dataFile == "" {
		return nil
	}
	fileInfo, err := os.Stat(s.dataFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.RLock()
	stale := fileInfo.ModTime().After(s.fileModTime)
	s.mu.RUnlock()
	if !stale {
		return nil
	}
	return s.loadFromFile()
}

// listInternal returns toys oldest first, without locking.
func (s *MemoryStore) listInternal() []Toy {
	toys := make([]Toy, 0, len(s.toys))
	for _, t := range s.toys {
		toys = append(toys, cloneToy(t))
	}
	sort.Slice(toys, func(i, j int) bool {
		if toys[i].CreatedAt != toys[j].CreatedAt {
			return toys[i].CreatedAt < toys[j].CreatedAt
		}
		return toys[i].ID < toys[j].ID
	})
	return toys
}

func (s *MemoryStore) Query(_ context.Context, filterBy FilterBy, sortBy SortBy, pageIdx string) ([]Toy, error) {
	if err := s.refresh(); err != nil {
		return nil, errors.Wrap(err, "reload toys")
	}
	s.mu.RLock()
	toys := s.listInternal()
	s.mu.RUnlock()

	return applyQuery(toys, filterBy, sortBy, pageIdx, s.pageSize)
}

func (s *MemoryStore) Get(_ context.Context, id string) (Toy, error) {
	if err := s.refresh(); err != nil {
		return Toy{}, errors.Wrap(err, "reload toys")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.toys[id]
	if !ok {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return cloneToy(t), nil
}

func (s *MemoryStore) Save(_ context.Context, t Toy) (Toy, error) {
	if err := s.refresh(); err != nil {
		return Toy{}, errors.Wrap(err, "reload toys")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t = cloneToy(t)
	prev, exists := s.toys[t.ID]
	if t.ID == "" {
		t.ID = uuid.New().String()
		t.CreatedAt = s.now().UnixMilli()
	} else {
		if !exists {
			return Toy{}, errors.Wrapf(ErrNotFound, "id %s", t.ID)
		}
		t.CreatedAt = prev.CreatedAt
	}

	s.toys[t.ID] = t
	if err := s.saveToFile(); err != nil {
		if exists {
			s.toys[t.ID] = prev
		} else {
			delete(s.toys, t.ID)
		}
		return Toy{}, errors.Wrap(err, "persist toys")
	}
	return cloneToy(t), nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) (string, error) {
	if err := s.refresh(); err != nil {
		return "", errors.Wrap(err, "reload toys")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.toys[id]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "id %s", id)
	}
	delete(s.toys, id)
	if err := s.saveToFile(); err != nil {
		s.toys[id] = prev
		return "", errors.Wrap(err, "persist toys")
	}
	return RemovedMsg, nil
}

// Close is a no-op; every change is already on disk.
func (s *MemoryStore) Close() error {
	return nil
}

// cloneToy copies the labels slice so callers cannot mutate stored toys.
// Nil labels become an empty slice.
func cloneToy(t Toy) Toy {
	labels := make([]string, len(t.Labels))
	copy(labels, t.Labels)
	t.Labels = labels
	return t
}
