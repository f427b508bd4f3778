package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var allowedExtensions = []string{
	".mp3",
	".m4a",
	".aac",
	".wav",
	".flac",
	".ogg",
}

const (
	defaultListenAddr        = "127.0.0.1:8080"
	defaultRefreshDebounceMS = 500
	defaultRecentCount       = 3
	defaultSiteTitle         = "Podcat"
	defaultSiteDescription   = "Podcat 是一個專注於科技、設計與創新思維的播客節目。"
	defaultSiteLanguage      = "zh-TW"
)

// AllowedExtensions returns the list of supported audio file extensions (lowercase).
func AllowedExtensions() []string {
	result := make([]string, len(allowedExtensions))
	copy(result, allowedExtensions)
	return result
}

// ResolveContentDir returns the directory holding content overrides. When no
// directory is configured the second return value is false and the embedded
// content is used.
func ResolveContentDir() (string, bool, error) {
	return resolveOptionalDir("PODCAT_CONTENT_DIR")
}

// ResolveAudioRoot returns the directory episode audio paths are relative to.
// The directory must exist; it is not created.
func ResolveAudioRoot() (string, bool, error) {
	return resolveOptionalDir("PODCAT_AUDIO_DIR")
}

func resolveOptionalDir(env string) (string, bool, error) {
	dir := strings.TrimSpace(os.Getenv(env))
	if dir == "" {
		return "", false, nil
	}

	abs, err := expandPath(dir)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", false, err
	}
	if !info.IsDir() {
		return "", false, errors.New(env + " must point to a directory")
	}
	return abs, true, nil
}

// ListenAddr returns the TCP address the HTTP server should bind to.
func ListenAddr() string {
	addr := strings.TrimSpace(os.Getenv("PODCAT_LISTEN_ADDR"))
	if addr == "" {
		return defaultListenAddr
	}
	return addr
}

// ValidateListenAddr ensures the configured listen address is restricted to localhost.
func ValidateListenAddr(addr string) error {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if strings.HasPrefix(addr, "127.0.0.1:") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]:") {
		return nil
	}
	return errors.New("listen address must bind to localhost for security")
}

// RefreshDebounce returns how long to wait after file-system changes before
// reloading content or tokens.
func RefreshDebounce() time.Duration {
	ms, ok := nonNegativeInt("PODCAT_REFRESH_DEBOUNCE_MS")
	if !ok {
		ms = defaultRefreshDebounceMS
	}
	return time.Duration(ms) * time.Millisecond
}

// RecentCount returns how many episodes the recent listing shows by default.
func RecentCount() int {
	count, ok := nonNegativeInt("PODCAT_RECENT_COUNT")
	if !ok || count == 0 {
		return defaultRecentCount
	}
	return count
}

func nonNegativeInt(env string) (int, bool) {
	value := strings.TrimSpace(os.Getenv(env))
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ResolveTokenFile returns the absolute path to the feed token file when configured.
// The file is created if it does not already exist. When no file is configured the
// second return value will be false.
func ResolveTokenFile() (string, bool, error) {
	path := strings.TrimSpace(os.Getenv("PODCAT_TOKEN_FILE"))
	if path == "" {
		return "", false, nil
	}

	abs, err := expandPath(path)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", false, err
	}

	if _, err := os.Stat(abs); err != nil {
		if !os.IsNotExist(err) {
			return "", false, err
		}
		file, err := os.OpenFile(abs, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return "", false, err
		}
		if err := file.Close(); err != nil {
			return "", false, err
		}
	}

	return abs, true, nil
}

// SiteMetadata is the channel information published in the RSS feed.
type SiteMetadata struct {
	Title       string
	Description string
	Language    string
	Author      string
	Link        string
}

type siteMetadataYAML struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	Link        string `yaml:"link"`
}

// ResolveSiteMetadata returns the site metadata after applying defaults, the
// YAML file named by PODCAT_SITE_CONFIG (when set), and environment overrides.
func ResolveSiteMetadata() (SiteMetadata, error) {
	meta := SiteMetadata{
		Title:       defaultSiteTitle,
		Description: defaultSiteDescription,
		Language:    defaultSiteLanguage,
	}

	configPath := strings.TrimSpace(os.Getenv("PODCAT_SITE_CONFIG"))
	if configPath != "" {
		resolved, err := expandPath(configPath)
		if err != nil {
			return SiteMetadata{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return SiteMetadata{}, err
		}
		var file siteMetadataYAML
		if err := yaml.Unmarshal(data, &file); err != nil {
			return SiteMetadata{}, err
		}
		overlay(&meta, file.Title, file.Description, file.Language, file.Author, file.Link)
	}

	overlay(&meta,
		os.Getenv("PODCAT_SITE_TITLE"),
		os.Getenv("PODCAT_SITE_DESCRIPTION"),
		os.Getenv("PODCAT_SITE_LANGUAGE"),
		os.Getenv("PODCAT_SITE_AUTHOR"),
		os.Getenv("PODCAT_SITE_LINK"),
	)

	return meta, nil
}

func overlay(meta *SiteMetadata, title, description, language, author, link string) {
	if value := strings.TrimSpace(title); value != "" {
		meta.Title = value
	}
	if value := strings.TrimSpace(description); value != "" {
		meta.Description = value
	}
	if value := strings.TrimSpace(language); value != "" {
		meta.Language = value
	}
	if value := strings.TrimSpace(author); value != "" {
		meta.Author = value
	}
	if value := strings.TrimSpace(link); value != "" {
		meta.Link = value
	}
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return filepath.Abs(path)
}
