package foodstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/macronotes/backend/internal/domain"
)

// frontmatter is the fixed external schema of one food file. All macro
// fields are per the stored serving size.
type frontmatter struct {
	ServingSize float64 `yaml:"servingSize"`
	Calories    float64 `yaml:"calories"`
	Protein     float64 `yaml:"protein"`
	Fat         float64 `yaml:"fat"`
	Carbs       float64 `yaml:"carbs"`
}

// Store is a read-only food database backed by a directory of markdown
// files with YAML frontmatter. The filename minus extension is the food
// name. The directory is watched; edits trigger a reload of the whole
// snapshot, keeping the last good one on failure.
type Store struct {
	dir     string
	watcher *fsnotify.Watcher
	debug   bool

	mu       sync.RWMutex
	entries  []domain.FoodEntry
	onReload func()

	done chan struct{}
}

// New loads all food files under dir and starts watching for changes.
func New(dir string, debug bool) (*Store, error) {
	entries, err := loadDir(dir, debug)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating food directory watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching food directory %q: %w", dir, err)
	}

	s := &Store{
		dir:     dir,
		watcher: watcher,
		debug:   debug,
		entries: entries,
		done:    make(chan struct{}),
	}
	go s.watch()
	return s, nil
}

// Entries returns a snapshot copy of the loaded food entries.
func (s *Store) Entries(ctx context.Context) ([]domain.FoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.FoodEntry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot, nil
}

// SetOnReload registers a hook invoked after every successful reload.
// Callers use it to invalidate caches of resolved data.
func (s *Store) SetOnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = fn
}

// Close stops the directory watcher.
func (s *Store) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// watch reloads the snapshot whenever a markdown file under the
// directory is created, written, renamed, or removed.
func (s *Store) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[STORE] food directory watch error: %v", err)
		}
	}
}

// reload replaces the snapshot, keeping the previous one if the
// directory can no longer be read.
func (s *Store) reload() {
	entries, err := loadDir(s.dir, s.debug)
	if err != nil {
		log.Printf("[STORE] food reload failed, keeping previous snapshot: %v", err)
		return
	}

	s.mu.Lock()
	s.entries = entries
	hook := s.onReload
	s.mu.Unlock()

	if s.debug {
		log.Printf("[STORE] reloaded %d food entries from %s", len(entries), s.dir)
	}
	if hook != nil {
		hook()
	}
}

// loadDir parses every .md file in dir into a FoodEntry. Files without
// readable frontmatter are skipped with a note; entries with invalid
// serving sizes load anyway and are rejected later by the resolver.
func loadDir(dir string, debug bool) ([]domain.FoodEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading food directory %q: %w", dir, err)
	}

	var entries []domain.FoodEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".md") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[STORE] skipping unreadable food file %s: %v", path, err)
			continue
		}
		name := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		entry, err := parseEntry(name, data)
		if err != nil {
			if debug {
				log.Printf("[STORE] skipping food file %s: %v", path, err)
			}
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseEntry extracts the YAML frontmatter fence from a food file.
func parseEntry(name string, data []byte) (domain.FoodEntry, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return domain.FoodEntry{}, fmt.Errorf("no frontmatter fence")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return domain.FoodEntry{}, fmt.Errorf("unterminated frontmatter fence")
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return domain.FoodEntry{}, fmt.Errorf("parsing frontmatter: %w", err)
	}

	return domain.FoodEntry{
		Name:             name,
		ServingSizeGrams: fm.ServingSize,
		Calories:         fm.Calories,
		Protein:          fm.Protein,
		Fat:              fm.Fat,
		Carbs:            fm.Carbs,
	}, nil
}
