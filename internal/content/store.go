// Package content loads the site's episode, FAQ and about tables and derives
// the views the front-end needs from them.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"podcat/internal/metadata"
	"podcat/internal/models"
	"podcat/internal/watch"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is one consistent version of all content tables.
type Snapshot struct {
	Episodes []models.Episode      `json:"episodes"`
	FAQ      []models.FAQItem      `json:"faq"`
	About    []models.AboutSection `json:"about"`
}

// Options controls where content is read from.
type Options struct {
	// Dir overrides the embedded tables with episodes.yaml, faq.yaml and
	// about.yaml from this directory. Missing files fall back to the
	// embedded table.
	Dir string
	// AudioRoot is the directory episode audio paths are relative to.
	AudioRoot string
	// Watch reloads the content when files under Dir or AudioRoot change.
	Watch    bool
	Debounce time.Duration
}

// Store serves the current content snapshot. All accessors return copies.
type Store struct {
	dir       string
	audioRoot string
	logger    *log.Logger
	watcher   *watch.Watcher

	mu       sync.RWMutex
	snap     Snapshot
	loadedAt time.Time
}

// NewStore loads the content described by opts. The initial load must succeed;
// later reload failures keep the previous snapshot.
func NewStore(opts Options, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &Store{logger: logger}
	if opts.Dir != "" {
		s.dir = filepath.Clean(opts.Dir)
	}
	if opts.AudioRoot != "" {
		s.audioRoot = filepath.Clean(opts.AudioRoot)
	}

	snap, err := Load(s.dir, s.audioRoot, logger)
	if err != nil {
		return nil, err
	}
	s.swap(snap)

	if opts.Watch && (s.dir != "" || s.audioRoot != "") {
		w, err := watch.New(opts.Debounce, s.isContentEvent, s.reload, logger)
		if err != nil {
			return nil, err
		}
		if s.dir != "" {
			if err := w.Add(s.dir); err != nil {
				w.Close()
				return nil, fmt.Errorf("watch content dir: %w", err)
			}
		}
		if s.audioRoot != "" {
			w.AddTree(s.audioRoot)
		}
		s.watcher = w
	}

	return s, nil
}

// Close stops watching for changes.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

// Snapshot returns a copy of the current content.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Episodes: s.Episodes(),
		FAQ:      s.FAQ(),
		About:    s.About(),
	}
}

// LoadedAt reports when the current snapshot was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Episodes returns every episode in content order.
func (s *Store) Episodes() []models.Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Episode, len(s.snap.Episodes))
	for i, ep := range s.snap.Episodes {
		result[i] = ep.Clone()
	}
	return result
}

// Episode returns the episode with the given id.
func (s *Store) Episode(id int) (models.Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ep := range s.snap.Episodes {
		if ep.ID == id {
			return ep.Clone(), nil
		}
	}
	return models.Episode{}, fmt.Errorf("episode %d: %w", id, ErrNotFound)
}

// RecentEpisodes returns the count most recent episodes.
func (s *Store) RecentEpisodes(count int) []models.Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SelectRecentEpisodes(s.snap.Episodes, count)
}

// FAQ returns every FAQ item in content order.
func (s *Store) FAQ() []models.FAQItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.FAQItem, len(s.snap.FAQ))
	copy(result, s.snap.FAQ)
	return result
}

// FAQByCategory returns the FAQ grouped by category.
func (s *Store) FAQByCategory() FAQGroups {
	return GroupFAQByCategory(s.FAQ())
}

// About returns every about-page section in content order.
func (s *Store) About() []models.AboutSection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.AboutSection, len(s.snap.About))
	copy(result, s.snap.About)
	return result
}

// AboutSection returns the section with the given id.
func (s *Store) AboutSection(id string) (models.AboutSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, section := range s.snap.About {
		if section.ID == id {
			return section, nil
		}
	}
	return models.AboutSection{}, fmt.Errorf("about section %q: %w", id, ErrNotFound)
}

// AudioPath resolves an episode audio reference to a file under the audio
// root. It fails when no audio root is configured or rel escapes it.
func (s *Store) AudioPath(rel string) (string, error) {
	return resolveAudio(s.audioRoot, rel)
}

func (s *Store) swap(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Printf("content loaded: %d episodes, %d faq items, %d about sections",
		len(snap.Episodes), len(snap.FAQ), len(snap.About))
}

func (s *Store) reload() {
	snap, err := Load(s.dir, s.audioRoot, s.logger)
	if err != nil {
		s.logger.Printf("content reload failed, keeping previous content: %v", err)
		return
	}
	s.swap(snap)
}

func (s *Store) isContentEvent(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if s.dir != "" && filepath.Dir(name) == s.dir {
		switch filepath.Base(name) {
		case episodesFile, faqFile, aboutFile:
			return true
		}
	}
	return s.audioRoot != "" && withinRoot(s.audioRoot, name)
}

// Load reads and validates all content tables once. dir and audioRoot may be
// empty; see Options.
func Load(dir, audioRoot string, logger *log.Logger) (Snapshot, error) {
	if logger == nil {
		logger = log.Default()
	}

	var snap Snapshot
	if err := readTable(dir, episodesFile, &snap.Episodes); err != nil {
		return Snapshot{}, err
	}
	if err := readTable(dir, faqFile, &snap.FAQ); err != nil {
		return Snapshot{}, err
	}
	if err := readTable(dir, aboutFile, &snap.About); err != nil {
		return Snapshot{}, err
	}

	if err := Validate(snap); err != nil {
		return Snapshot{}, fmt.Errorf("invalid content: %w", err)
	}

	if audioRoot != "" {
		attachMedia(snap.Episodes, audioRoot, logger)
	}

	return snap, nil
}

func readTable(dir, name string, out any) error {
	data, source, err := tableBytes(dir, name)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s: %w", source, err)
	}
	return nil
}

func tableBytes(dir, name string) ([]byte, string, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, path, fmt.Errorf("read %s: %w", path, err)
		}
	}

	embedded := pathpkg.Join("data", name)
	data, err := defaultTables.ReadFile(embedded)
	if err != nil {
		return nil, embedded, fmt.Errorf("read embedded %s: %w", name, err)
	}
	return data, "embedded " + name, nil
}

func attachMedia(episodes []models.Episode, audioRoot string, logger *log.Logger) {
	for i := range episodes {
		if episodes[i].Audio == "" {
			continue
		}
		path, err := resolveAudio(audioRoot, episodes[i].Audio)
		if err != nil {
			logger.Printf("episode %d audio %q: %v", episodes[i].ID, episodes[i].Audio, err)
			continue
		}
		media, err := metadata.Probe(path)
		if err != nil {
			logger.Printf("episode %d audio %q: %v", episodes[i].ID, episodes[i].Audio, err)
			continue
		}
		episodes[i].Media = &media
	}
}

func resolveAudio(root, rel string) (string, error) {
	if root == "" {
		return "", errors.New("no audio directory configured")
	}

	rel = pathpkg.Clean("/" + filepath.ToSlash(rel))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		return "", errors.New("empty audio path")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(absRoot, filepath.FromSlash(rel))
	if !withinRoot(absRoot, target) {
		return "", fmt.Errorf("audio path %q escapes the audio directory", rel)
	}
	return target, nil
}

func withinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
