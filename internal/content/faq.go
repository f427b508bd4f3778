package content

import (
	"bytes"
	"encoding/json"

	"podcat/internal/models"
)

// FAQGroup holds the items of one category in their original order.
type FAQGroup struct {
	Category models.Category  `json:"category"`
	Items    []models.FAQItem `json:"items"`
}

// FAQGroups is an ordered grouping of FAQ items. Groups appear in the order
// their category was first seen.
type FAQGroups []FAQGroup

// GroupFAQByCategory groups items by category, using the catch-all category
// for items without one. Group order follows first appearance and items keep
// their relative order inside each group.
func GroupFAQByCategory(items []models.FAQItem) FAQGroups {
	groups := FAQGroups{}
	index := make(map[models.Category]int)

	for _, item := range items {
		key := item.Category.Effective()
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, FAQGroup{Category: key})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}

	return groups
}

// Get returns the items of category, or nil when no item uses it.
func (g FAQGroups) Get(category models.Category) []models.FAQItem {
	for _, group := range g {
		if group.Category == category {
			return group.Items
		}
	}
	return nil
}

// Categories returns the group keys in order.
func (g FAQGroups) Categories() []models.Category {
	result := make([]models.Category, len(g))
	for i, group := range g {
		result[i] = group.Category
	}
	return result
}

// Total returns the number of items across all groups.
func (g FAQGroups) Total() int {
	total := 0
	for _, group := range g {
		total += len(group.Items)
	}
	return total
}

// Flatten concatenates the groups back into a single slice.
func (g FAQGroups) Flatten() []models.FAQItem {
	result := make([]models.FAQItem, 0, g.Total())
	for _, group := range g {
		result = append(result, group.Items...)
	}
	return result
}

// MarshalJSON encodes the groups as a JSON object keyed by category, with keys
// in group order.
func (g FAQGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(group.Category))
		if err != nil {
			return nil, err
		}
		items := group.Items
		if items == nil {
			items = []models.FAQItem{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
