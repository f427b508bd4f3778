package models

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Episode is one published episode as listed on the site.
type Episode struct {
	ID            int        `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Date          string     `json:"date" yaml:"date"`
	Description   string     `json:"description" yaml:"description"`
	EpisodeNumber string     `json:"episodeNumber" yaml:"episodeNumber"`
	Audio         string     `json:"audio,omitempty" yaml:"audio,omitempty"`
	Media         *MediaInfo `json:"media,omitempty" yaml:"-"`
}

// MediaInfo describes the audio file attached to an episode.
type MediaInfo struct {
	Filename        string    `json:"filename"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	BitrateKbps     *int      `json:"bitrate_kbps,omitempty"`
	Artist          *string   `json:"artist,omitempty"`
	ModifiedAt      time.Time `json:"modified_at"`
}

// PublishedAt parses the episode date. Both plain calendar dates and
// RFC 3339 timestamps are accepted.
func (e Episode) PublishedAt() (time.Time, error) {
	return ParseDate(e.Date)
}

// ParseDate parses an ISO 8601 calendar date or RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// EpisodeLabel returns the conventional display label for an episode sequence
// number, e.g. EP01.
func EpisodeLabel(seq int) string {
	return fmt.Sprintf("EP%02d", seq)
}

// Clone returns a copy that shares no pointers with e.
func (e Episode) Clone() Episode {
	if e.Media != nil {
		media := *e.Media
		e.Media = &media
	}
	return e
}
