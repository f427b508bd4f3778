package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Category is the closed set of FAQ categories. The zero value means the item
// has no category.
type Category string

const (
	CategoryListening    Category = "收聽方式"
	CategoryFrequency    Category = "發布頻率"
	CategoryContact      Category = "聯絡方式"
	CategorySubscription Category = "訂閱資訊"
	CategoryOther        Category = "其他"
)

var categories = []Category{
	CategoryListening,
	CategoryFrequency,
	CategoryContact,
	CategorySubscription,
	CategoryOther,
}

// Categories returns every known category in display order.
func Categories() []Category {
	result := make([]Category, len(categories))
	copy(result, categories)
	return result
}

// ParseCategory normalizes value and matches it against the known categories.
// An empty value yields the zero Category.
func ParseCategory(value string) (Category, error) {
	value = norm.NFC.String(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, c := range categories {
		if string(c) == value {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown faq category %q", value)
}

// Effective returns the category used for grouping: c itself, or the
// catch-all category when c is absent.
func (c Category) Effective() Category {
	if c == "" {
		return CategoryOther
	}
	return c
}

func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseCategory(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FAQItem is a single question and answer pair.
type FAQItem struct {
	ID       int      `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
}
