package content

import (
	"sort"
	"time"

	"podcat/internal/models"
)

// DefaultRecentCount is the number of episodes shown when no count is given.
const DefaultRecentCount = 3

// SelectRecentEpisodes returns the count most recent episodes, latest first.
// The input is not modified. Episodes sharing a date keep their input order.
// An episode whose date cannot be parsed is treated as older than every valid
// date. A count larger than the input returns every episode; zero or negative
// counts return an empty slice.
func SelectRecentEpisodes(episodes []models.Episode, count int) []models.Episode {
	if count <= 0 || len(episodes) == 0 {
		return []models.Episode{}
	}

	type dated struct {
		episode models.Episode
		at      time.Time
		valid   bool
	}

	sorted := make([]dated, len(episodes))
	for i, ep := range episodes {
		at, err := ep.PublishedAt()
		sorted[i] = dated{episode: ep.Clone(), at: at, valid: err == nil}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].valid != sorted[j].valid {
			return sorted[i].valid
		}
		return sorted[i].at.After(sorted[j].at)
	})

	if count > len(sorted) {
		count = len(sorted)
	}

	result := make([]models.Episode, count)
	for i := range result {
		result[i] = sorted[i].episode
	}
	return result
}
