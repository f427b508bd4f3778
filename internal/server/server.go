package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"podcat/internal/content"
	"podcat/internal/models"
)

// ContentProvider abstracts the content source for the HTTP handlers.
type ContentProvider interface {
	Episodes() []models.Episode
	Episode(id int) (models.Episode, error)
	RecentEpisodes(count int) []models.Episode
	FAQ() []models.FAQItem
	FAQByCategory() content.FAQGroups
	About() []models.AboutSection
	AboutSection(id string) (models.AboutSection, error)
	AudioPath(rel string) (string, error)
}

// TokenValidator determines whether a supplied token is authorized.
type TokenValidator interface {
	IsValidToken(token string) bool
}

// FeedMetadata describes the static information necessary to render the RSS feed.
type FeedMetadata struct {
	Title       string
	Description string
	Language    string
	Author      string
	Link        string
}

// Config carries the settings of the HTTP handler.
type Config struct {
	Feed FeedMetadata
	// RecentCount is used by /episodes/recent when no count is requested.
	// Zero selects content.DefaultRecentCount.
	RecentCount int
	// AllowedExtensions limits which files /audio/ serves. Empty allows all.
	AllowedExtensions []string
}

type serverHandler struct {
	content     ContentProvider
	validator   TokenValidator
	feed        FeedMetadata
	recentCount int
	allowed     map[string]struct{}
	logger      *log.Logger
}

// New creates the HTTP handler that exposes the content API, RSS feed and
// episode audio.
func New(provider ContentProvider, validator TokenValidator, cfg Config, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	feed := cfg.Feed
	if feed.Title == "" {
		feed.Title = "Podcat"
	}
	if feed.Description == "" {
		feed.Description = feed.Title
	}

	recentCount := cfg.RecentCount
	if recentCount <= 0 {
		recentCount = content.DefaultRecentCount
	}

	h := &serverHandler{
		content:     provider,
		validator:   validator,
		feed:        feed,
		recentCount: recentCount,
		allowed:     make(map[string]struct{}, len(cfg.AllowedExtensions)),
		logger:      logger,
	}
	for _, ext := range cfg.AllowedExtensions {
		h.allowed[strings.ToLower(ext)] = struct{}{}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/episodes", h.handleEpisodes)
	mux.HandleFunc("/episodes/", h.handleEpisode)
	mux.HandleFunc("/faq", h.handleFAQ)
	mux.HandleFunc("/faq/categories", h.handleFAQCategories)
	mux.HandleFunc("/about", h.handleAbout)
	mux.HandleFunc("/about/", h.handleAboutSection)
	mux.HandleFunc("/feed", h.handleFeed)
	mux.HandleFunc("/feed.xml", h.handleFeed)
	mux.HandleFunc("/rss", h.handleFeed)
	mux.HandleFunc("/audio/", h.handleAudio)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *serverHandler) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.content.Episodes())
}

// handleEpisode serves /episodes/recent and /episodes/{id}.
func (h *serverHandler) handleEpisode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/episodes/"), "/")
	if key == "recent" {
		h.handleRecentEpisodes(w, r)
		return
	}

	id, err := strconv.Atoi(key)
	if err != nil || id <= 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	episode, err := h.content.Episode(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	h.writeJSON(w, episode)
}

func (h *serverHandler) handleRecentEpisodes(w http.ResponseWriter, r *http.Request) {
	count := h.recentCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = parsed
	}
	h.writeJSON(w, h.content.RecentEpisodes(count))
}

func (h *serverHandler) handleFAQ(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.content.FAQ())
}

func (h *serverHandler) handleFAQCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.content.FAQByCategory())
}

func (h *serverHandler) handleAbout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.content.About())
}

func (h *serverHandler) handleAboutSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/about/"), "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	section, err := h.content.AboutSection(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	h.writeJSON(w, section)
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token, ok := h.requireToken(w, r)
	if !ok {
		return
	}

	base := requestBaseURL(r)
	if base == nil {
		h.logger.Printf("unable to determine request base URL")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	data, err := h.buildRSSFeed(base, r.URL.Path, r.URL.RawQuery, h.content.Episodes(), token)
	if err != nil {
		h.logger.Printf("failed to build RSS feed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		h.logger.Printf("failed to write RSS feed: %v", err)
	}
}

func (h *serverHandler) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.requireToken(w, r); !ok {
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/audio/")
	if !h.isAllowed(rel) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	resolved, err := h.content.AudioPath(rel)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("failed to stat audio file %s: %v", resolved, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, resolved)
}

func (h *serverHandler) isAllowed(path string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	_, ok := h.allowed[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (h *serverHandler) requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.validator == nil {
		return "", true
	}

	token := extractToken(r)
	if token == "" || !h.validator.IsValidToken(token) {
		w.WriteHeader(http.StatusUnauthorized)
		return "", false
	}
	return token, true
}

func (h *serverHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("failed to encode response: %v", err)
	}
}

func (h *serverHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Printf("failed to encode error response: %v", err)
	}
}

func (h *serverHandler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, content.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Printf("lookup failed: %v", err)
	w.WriteHeader(http.StatusInternalServerError)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		logger.Printf("%s %s -> %d (%dB) in %s", r.Method, r.URL.Path, sw.status, sw.size, duration)
	})
}

func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	if header := strings.TrimSpace(r.Header.Get("X-Podcast-Token")); header != "" {
		return header
	}

	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:])
	}

	return ""
}
