package server

import (
	"encoding/xml"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	pathpkg "path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"podcat/internal/content"
	"podcat/internal/models"
)

func requestBaseURL(r *http.Request) *url.URL {
	scheme := "http"
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			candidate := strings.TrimSpace(parts[0])
			if candidate != "" {
				scheme = candidate
			}
		}
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		return nil
	}

	return &url.URL{Scheme: scheme, Host: host}
}

// buildRSSFeed renders every episode, latest first. Episodes with an attached
// audio file get an enclosure served from /audio/.
func (h *serverHandler) buildRSSFeed(base *url.URL, requestPath, rawQuery string, episodes []models.Episode, token string) ([]byte, error) {
	feedURL := *base
	feedURL.Path = requestPath
	feedURL.RawQuery = rawQuery

	channelLink := h.feed.Link
	if channelLink == "" {
		link := *base
		link.Path = ""
		link.RawQuery = ""
		channelLink = link.String()
	}

	sorted := content.SelectRecentEpisodes(episodes, len(episodes))

	var lastBuild time.Time
	for _, ep := range sorted {
		if published, err := ep.PublishedAt(); err == nil {
			lastBuild = published.UTC()
			break
		}
	}
	if lastBuild.IsZero() {
		lastBuild = time.Now().UTC()
	}

	rss := rssFeed{
		Version:  "2.0",
		AtomNS:   "http://www.w3.org/2005/Atom",
		ITunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:         h.feed.Title,
			Link:          channelLink,
			Description:   h.feed.Description,
			Language:      h.feed.Language,
			LastBuildDate: lastBuild.Format(time.RFC1123Z),
			Generator:     "podcat",
			AtomLink: rssAtomLink{
				Href: feedURL.String(),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			ITunesAuthor: h.feed.Author,
		},
	}

	for _, ep := range sorted {
		pageURL := *base
		pageURL.Path = "/episodes/" + strconv.Itoa(ep.ID)
		pageURL.RawQuery = ""

		item := rssItem{
			Title:        strings.TrimSpace(ep.EpisodeNumber + " " + ep.Title),
			Link:         pageURL.String(),
			GUID:         rssGUID{IsPermaLink: "false", Value: fmt.Sprintf("podcat-episode-%d", ep.ID)},
			Description:  ep.Description,
			ITunesAuthor: h.feed.Author,
		}

		if published, err := ep.PublishedAt(); err == nil {
			item.PubDate = published.UTC().Format(time.RFC1123Z)
		}

		if ep.Media != nil && ep.Audio != "" {
			enclosureURL := *base
			enclosureURL.Scheme = "https"
			enclosureURL.Path = "/" + strings.TrimLeft(pathpkg.Join("audio", filepath.ToSlash(ep.Audio)), "/")
			enclosureURL.RawQuery = ""
			if token != "" {
				values := enclosureURL.Query()
				values.Set("token", token)
				enclosureURL.RawQuery = values.Encode()
			}

			item.Enclosure = &rssEnclosure{
				URL:    enclosureURL.String(),
				Length: ep.Media.SizeBytes,
				Type:   mimeTypeForFilename(ep.Media.Filename),
			}
			if ep.Media.DurationSeconds != nil {
				item.ITunesDuration = formatDuration(*ep.Media.DurationSeconds)
			}
			if ep.Media.Artist != nil {
				item.ITunesAuthor = *ep.Media.Artist
			}
		}

		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), output...), nil
}

func mimeTypeForFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		if fallback, ok := fallbackMIMETypes[ext]; ok {
			return fallback
		}
		if value := mime.TypeByExtension(ext); value != "" {
			return value
		}
	}
	return "application/octet-stream"
}

var fallbackMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate"`
	Generator     string      `xml:"generator"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	ITunesAuthor  string      `xml:"itunes:author,omitempty"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title          string        `xml:"title"`
	Link           string        `xml:"link"`
	GUID           rssGUID       `xml:"guid"`
	PubDate        string        `xml:"pubDate,omitempty"`
	Description    string        `xml:"description"`
	Enclosure      *rssEnclosure `xml:"enclosure,omitempty"`
	ITunesDuration string        `xml:"itunes:duration,omitempty"`
	ITunesAuthor   string        `xml:"itunes:author,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
