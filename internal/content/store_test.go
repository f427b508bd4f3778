package content

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podcat/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestStoreLoadsEmbeddedContent(t *testing.T) {
	store, err := NewStore(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if got := len(store.Episodes()); got != 20 {
		t.Fatalf("expected 20 episodes, got %d", got)
	}
	if got := len(store.FAQ()); got != 10 {
		t.Fatalf("expected 10 faq items, got %d", got)
	}
	about := store.About()
	if len(about) != 4 {
		t.Fatalf("expected 4 about sections, got %d", len(about))
	}
	if about[0].ID != "intro" || about[0].Type != models.SectionIntro {
		t.Fatalf("unexpected first section %+v", about[0])
	}
	if store.LoadedAt().IsZero() {
		t.Fatalf("expected load time to be recorded")
	}
}

func TestStoreLookups(t *testing.T) {
	store, err := NewStore(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ep, err := store.Episode(5)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if ep.EpisodeNumber != "EP05" || ep.Date != "2025-02-12" {
		t.Fatalf("unexpected episode %+v", ep)
	}

	if _, err := store.Episode(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	section, err := store.AboutSection("contact")
	if err != nil {
		t.Fatalf("AboutSection: %v", err)
	}
	if section.Type != models.SectionContact {
		t.Fatalf("unexpected section %+v", section)
	}
	if _, err := store.AboutSection("footer"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	recent := store.RecentEpisodes(DefaultRecentCount)
	if len(recent) != 3 || recent[0].ID != 20 {
		t.Fatalf("unexpected recent episodes %+v", recent)
	}

	groups := store.FAQByCategory()
	if groups.Total() != 10 {
		t.Fatalf("expected 10 grouped items, got %d", groups.Total())
	}
}

func TestStoreReturnsDefensiveCopies(t *testing.T) {
	store, err := NewStore(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	episodes := store.Episodes()
	episodes[0].Title = "mutated"
	if store.Episodes()[0].Title == "mutated" {
		t.Fatalf("expected Episodes to return a copy")
	}

	faq := store.FAQ()
	faq[0].Answer = "mutated"
	if store.FAQ()[0].Answer == "mutated" {
		t.Fatalf("expected FAQ to return a copy")
	}

	about := store.About()
	about[0].Content = "mutated"
	if store.About()[0].Content == "mutated" {
		t.Fatalf("expected About to return a copy")
	}
}

func TestStoreDirectoryOverridesPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "episodes.yaml"), ""+
		"- id: 1\n"+
		"  title: Pilot\n"+
		"  date: \"2026-01-07\"\n"+
		"  description: First one\n"+
		"  episodeNumber: EP01\n")

	store, err := NewStore(Options{Dir: dir}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	episodes := store.Episodes()
	if len(episodes) != 1 || episodes[0].Title != "Pilot" {
		t.Fatalf("expected override episodes, got %+v", episodes)
	}
	if len(store.FAQ()) != 10 {
		t.Fatalf("expected embedded faq fallback, got %d", len(store.FAQ()))
	}
}

func TestStoreRejectsInvalidContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "faq.yaml"), ""+
		"- id: 1\n  question: q\n  answer: a\n"+
		"- id: 1\n  question: q\n  answer: a\n")

	_, err := NewStore(Options{Dir: dir}, quietLogger())
	if err == nil || !strings.Contains(err.Error(), "duplicate id 1") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	writeFile(t, filepath.Join(dir, "faq.yaml"), "- id: 1\n  question: q\n  answer: a\n  category: misc\n")
	if _, err := NewStore(Options{Dir: dir}, quietLogger()); err == nil {
		t.Fatalf("expected unknown category to fail loading")
	}

	writeFile(t, filepath.Join(dir, "faq.yaml"), "- id: 1\n  question: q\n  answr: typo\n")
	if _, err := NewStore(Options{Dir: dir}, quietLogger()); err == nil {
		t.Fatalf("expected unknown field to fail loading")
	}
}

func TestStoreEmptyFileYieldsEmptyTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "about.yaml"), "")

	store, err := NewStore(Options{Dir: dir}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if len(store.About()) != 0 {
		t.Fatalf("expected no about sections, got %d", len(store.About()))
	}
}

func TestStoreAttachesAudioMedia(t *testing.T) {
	dir := t.TempDir()
	audio := t.TempDir()
	writeFile(t, filepath.Join(audio, "2026", "ep01.m4a"), "audio-bytes")
	writeFile(t, filepath.Join(dir, "episodes.yaml"), ""+
		"- id: 1\n  title: One\n  date: \"2026-01-07\"\n  description: d\n  episodeNumber: EP01\n  audio: 2026/ep01.m4a\n"+
		"- id: 2\n  title: Two\n  date: \"2026-01-14\"\n  description: d\n  episodeNumber: EP02\n  audio: missing.mp3\n"+
		"- id: 3\n  title: Three\n  date: \"2026-01-21\"\n  description: d\n  episodeNumber: EP03\n  audio: ../escape.mp3\n")

	store, err := NewStore(Options{Dir: dir, AudioRoot: audio}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	episodes := store.Episodes()
	if episodes[0].Media == nil || episodes[0].Media.SizeBytes != int64(len("audio-bytes")) {
		t.Fatalf("expected media for episode 1, got %+v", episodes[0].Media)
	}
	if episodes[1].Media != nil {
		t.Fatalf("expected no media for missing audio")
	}

	episodes[0].Media.Filename = "mutated"
	if store.Episodes()[0].Media.Filename == "mutated" {
		t.Fatalf("expected media to be copied")
	}

	path, err := store.AudioPath("2026/ep01.m4a")
	if err != nil {
		t.Fatalf("AudioPath: %v", err)
	}
	if filepath.Base(path) != "ep01.m4a" {
		t.Fatalf("unexpected audio path %s", path)
	}
}

func TestResolveAudioConfinesToRoot(t *testing.T) {
	root := t.TempDir()

	if _, err := resolveAudio("", "a.mp3"); err == nil {
		t.Fatalf("expected error without audio root")
	}
	if _, err := resolveAudio(root, ""); err == nil {
		t.Fatalf("expected error for empty path")
	}

	path, err := resolveAudio(root, "../../etc/passwd")
	if err != nil {
		t.Fatalf("resolveAudio: %v", err)
	}
	if !withinRoot(root, path) {
		t.Fatalf("expected %s to stay within %s", path, root)
	}
}

func TestStoreReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	episodesPath := filepath.Join(dir, "episodes.yaml")
	writeFile(t, episodesPath, "- id: 1\n  title: One\n  date: \"2026-01-07\"\n  description: d\n  episodeNumber: EP01\n")

	store, err := NewStore(Options{Dir: dir, Watch: true, Debounce: 10 * time.Millisecond}, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})

	writeFile(t, episodesPath, ""+
		"- id: 1\n  title: One\n  date: \"2026-01-07\"\n  description: d\n  episodeNumber: EP01\n"+
		"- id: 2\n  title: Two\n  date: \"2026-01-14\"\n  description: d\n  episodeNumber: EP02\n")
	waitFor(t, func() bool { return len(store.Episodes()) == 2 }, "reload with second episode")

	writeFile(t, episodesPath, "- id: 1\n  title: Broken\n  date: \"not a date\"\n  description: d\n  episodeNumber: EP01\n")
	time.Sleep(150 * time.Millisecond)
	if len(store.Episodes()) != 2 {
		t.Fatalf("expected invalid content to keep the previous snapshot")
	}

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	time.Sleep(50 * time.Millisecond)
	if len(store.Episodes()) != 2 {
		t.Fatalf("unexpected change after unrelated file write")
	}
}

func waitFor(t *testing.T, predicate func() bool, label string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", label)
}
