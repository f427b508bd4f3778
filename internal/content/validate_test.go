package content

import (
	"strings"
	"testing"

	"podcat/internal/models"
)

func TestValidateAcceptsEmbeddedContent(t *testing.T) {
	snap, err := Load("", "", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(snap); err != nil {
		t.Fatalf("expected embedded content to be valid: %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	snap := Snapshot{
		Episodes: []models.Episode{
			{ID: 1, Title: "one", Date: "2025-01-01"},
			{ID: 1, Title: "dup", Date: "2025-01-08"},
			{ID: 0, Title: "zero", Date: "2025-01-15"},
			{ID: 3, Title: "", Date: "yesterday"},
		},
		FAQ: []models.FAQItem{
			{ID: 1},
			{ID: -4},
		},
		About: []models.AboutSection{
			{ID: "intro", Type: models.SectionIntro},
			{ID: "intro", Type: models.SectionTeam},
			{ID: " ", Type: models.SectionTeam},
			{ID: "contact"},
		},
	}

	err := Validate(snap)
	if err == nil {
		t.Fatalf("expected validation errors")
	}

	msg := err.Error()
	for _, want := range []string{
		"episode #2: duplicate id 1",
		"episode #3: id must be positive",
		`episode 3: invalid date "yesterday"`,
		"episode 3: title is empty",
		"faq #2: id must be positive",
		`about #2: duplicate id "intro"`,
		"about #3: id is empty",
		`about "contact": type is missing`,
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}
