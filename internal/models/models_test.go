package models

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseDateAcceptsCalendarDatesAndTimestamps(t *testing.T) {
	day, err := ParseDate("2025-05-28")
	if err != nil {
		t.Fatalf("ParseDate date: %v", err)
	}
	if day.Year() != 2025 || day.Month() != 5 || day.Day() != 28 {
		t.Fatalf("unexpected date %s", day)
	}

	stamp, err := ParseDate("2025-05-28T10:00:00+08:00")
	if err != nil {
		t.Fatalf("ParseDate timestamp: %v", err)
	}
	if !stamp.After(day) {
		t.Fatalf("expected timestamp %s after %s", stamp, day)
	}

	if _, err := ParseDate("2025-13-01"); err == nil {
		t.Fatalf("expected error for invalid month")
	}
	if _, err := (Episode{Date: "soon"}).PublishedAt(); err == nil {
		t.Fatalf("expected error for free text date")
	}
}

func TestEpisodeLabel(t *testing.T) {
	if got := EpisodeLabel(1); got != "EP01" {
		t.Fatalf("expected EP01, got %s", got)
	}
	if got := EpisodeLabel(120); got != "EP120" {
		t.Fatalf("expected EP120, got %s", got)
	}
}

func TestEpisodeCloneDetachesMedia(t *testing.T) {
	original := Episode{ID: 1, Media: &MediaInfo{Filename: "a.mp3"}}
	clone := original.Clone()
	clone.Media.Filename = "b.mp3"
	if original.Media.Filename != "a.mp3" {
		t.Fatalf("expected clone to own its media info")
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory(" 收聽方式 ")
	if err != nil || got != CategoryListening {
		t.Fatalf("expected listening category, got %q %v", got, err)
	}

	got, err = ParseCategory("")
	if err != nil || got != "" {
		t.Fatalf("expected absent category, got %q %v", got, err)
	}

	if _, err := ParseCategory("Other"); err == nil {
		t.Fatalf("expected unknown category to be rejected")
	}
}

func TestCategoryEffective(t *testing.T) {
	if Category("").Effective() != CategoryOther {
		t.Fatalf("expected absent category to fall back to %s", CategoryOther)
	}
	if CategoryContact.Effective() != CategoryContact {
		t.Fatalf("expected explicit category to be kept")
	}
}

func TestCategoriesIsolation(t *testing.T) {
	first := Categories()
	first[0] = "changed"
	if Categories()[0] != CategoryListening {
		t.Fatalf("mutating returned slice should not affect the category set")
	}
}

func TestFAQItemYAMLValidatesCategory(t *testing.T) {
	var items []FAQItem
	doc := "" +
		"- id: 1\n" +
		"  question: q1\n" +
		"  answer: a1\n" +
		"  category: 訂閱資訊\n" +
		"- id: 2\n" +
		"  question: q2\n" +
		"  answer: a2\n"
	if err := yaml.Unmarshal([]byte(doc), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if items[0].Category != CategorySubscription || items[1].Category != "" {
		t.Fatalf("unexpected categories: %+v", items)
	}

	bad := "- id: 3\n  question: q\n  answer: a\n  category: misc\n"
	if err := yaml.Unmarshal([]byte(bad), &items); err == nil {
		t.Fatalf("expected unknown category to fail decoding")
	}
}

func TestFAQItemJSONValidatesCategory(t *testing.T) {
	var item FAQItem
	if err := json.Unmarshal([]byte(`{"id":1,"category":"其他"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Category != CategoryOther {
		t.Fatalf("expected other category, got %q", item.Category)
	}
	if err := json.Unmarshal([]byte(`{"id":1,"category":"nope"}`), &item); err == nil {
		t.Fatalf("expected unknown category to fail decoding")
	}
}

func TestSectionTypeDecoding(t *testing.T) {
	var sections []AboutSection
	doc := "- id: intro\n  title: t\n  content: c\n  type: Intro\n"
	if err := yaml.Unmarshal([]byte(doc), &sections); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sections[0].Type != SectionIntro {
		t.Fatalf("expected intro type, got %q", sections[0].Type)
	}

	if err := yaml.Unmarshal([]byte("- id: x\n  type: footer\n"), &sections); err == nil {
		t.Fatalf("expected unknown section type to fail decoding")
	}

	var section AboutSection
	if err := json.Unmarshal([]byte(`{"id":"team","type":"team"}`), &section); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if section.Type != SectionTeam {
		t.Fatalf("expected team type, got %q", section.Type)
	}
}
