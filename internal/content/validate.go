package content

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the invariants the site relies on: unique positive ids,
// parseable episode dates and non-empty about section ids. Every problem is
// reported, joined into one error.
func Validate(s Snapshot) error {
	var errs []error

	seenEpisodes := make(map[int]struct{}, len(s.Episodes))
	for i, ep := range s.Episodes {
		if ep.ID <= 0 {
			errs = append(errs, fmt.Errorf("episode #%d: id must be positive, got %d", i+1, ep.ID))
		} else if _, dup := seenEpisodes[ep.ID]; dup {
			errs = append(errs, fmt.Errorf("episode #%d: duplicate id %d", i+1, ep.ID))
		}
		seenEpisodes[ep.ID] = struct{}{}

		if _, err := ep.PublishedAt(); err != nil {
			errs = append(errs, fmt.Errorf("episode %d: %w", ep.ID, err))
		}
		if strings.TrimSpace(ep.Title) == "" {
			errs = append(errs, fmt.Errorf("episode %d: title is empty", ep.ID))
		}
	}

	seenFAQ := make(map[int]struct{}, len(s.FAQ))
	for i, item := range s.FAQ {
		if item.ID <= 0 {
			errs = append(errs, fmt.Errorf("faq #%d: id must be positive, got %d", i+1, item.ID))
		} else if _, dup := seenFAQ[item.ID]; dup {
			errs = append(errs, fmt.Errorf("faq #%d: duplicate id %d", i+1, item.ID))
		}
		seenFAQ[item.ID] = struct{}{}
	}

	seenAbout := make(map[string]struct{}, len(s.About))
	for i, section := range s.About {
		id := strings.TrimSpace(section.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("about #%d: id is empty", i+1))
			continue
		}
		if _, dup := seenAbout[id]; dup {
			errs = append(errs, fmt.Errorf("about #%d: duplicate id %q", i+1, id))
		}
		seenAbout[id] = struct{}{}
		if section.Type == "" {
			errs = append(errs, fmt.Errorf("about %q: type is missing", id))
		}
	}

	return errors.Join(errs...)
}
