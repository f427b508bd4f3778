package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SectionType selects how an about-page section is presented.
type SectionType string

const (
	SectionIntro   SectionType = "intro"
	SectionTeam    SectionType = "team"
	SectionMission SectionType = "mission"
	SectionContact SectionType = "contact"
)

// ParseSectionType matches value case-insensitively against the known types.
func ParseSectionType(value string) (SectionType, error) {
	switch SectionType(strings.ToLower(strings.TrimSpace(value))) {
	case SectionIntro:
		return SectionIntro, nil
	case SectionTeam:
		return SectionTeam, nil
	case SectionMission:
		return SectionMission, nil
	case SectionContact:
		return SectionContact, nil
	}
	return "", fmt.Errorf("unknown about section type %q", value)
}

func (s *SectionType) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseSectionType(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

func (s *SectionType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSectionType(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AboutSection is one block of the about page.
type AboutSection struct {
	ID      string      `json:"id" yaml:"id"`
	Title   string      `json:"title" yaml:"title"`
	Content string      `json:"content" yaml:"content"`
	Type    SectionType `json:"type" yaml:"type"`
}
