package auth

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"podcat/internal/watch"
)

// TokenStore holds the feed tokens listed in a file, one per line. Blank lines
// and lines starting with # are ignored. The file is re-read when it changes.
type TokenStore struct {
	file    string
	logger  *log.Logger
	watcher *watch.Watcher

	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewTokenStore loads filePath and starts watching it.
func NewTokenStore(filePath string, debounce time.Duration, logger *log.Logger) (*TokenStore, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &TokenStore{
		file:   filepath.Clean(filePath),
		logger: logger,
		tokens: make(map[string]struct{}),
	}

	if err := s.refresh(); err != nil {
		return nil, err
	}

	w, err := watch.New(debounce, s.isTokenFile, func() {
		if err := s.refresh(); err != nil {
			s.logger.Printf("token refresh error: %v", err)
		}
	}, logger)
	if err != nil {
		return nil, err
	}

	// Editors often replace the file, so the directory is watched as well.
	if err := w.Add(filepath.Dir(s.file)); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(s.file); err != nil {
		s.logger.Printf("token watcher could not watch file directly: %v", err)
	}

	s.watcher = w
	return s, nil
}

// Close stops watching the token file.
func (s *TokenStore) Close() error {
	return s.watcher.Close()
}

// IsValidToken reports whether token is listed in the token file.
func (s *TokenStore) IsValidToken(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Len returns the number of loaded tokens.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func (s *TokenStore) isTokenFile(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == s.file
}

func (s *TokenStore) refresh() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.tokens = make(map[string]struct{})
			s.mu.Unlock()
			s.logger.Printf("token file %s missing; no tokens loaded", s.file)
			return nil
		}
		return err
	}

	tokens := parseTokens(string(data))

	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()

	s.logger.Printf("loaded %d feed tokens", len(tokens))
	return nil
}

func parseTokens(data string) map[string]struct{} {
	lines := strings.Split(data, "\n")
	tokens := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		token := strings.TrimSpace(line)
		if token == "" || strings.HasPrefix(token, "#") {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}
