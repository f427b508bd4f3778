// Package metadata reads the technical details of an episode's audio file.
package metadata

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"podcat/internal/models"
)

// Probe inspects the audio file at path. Size and modification time are always
// reported; tags are read when present and duration and bitrate are computed
// for MP3 files only.
func Probe(path string) (models.MediaInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.MediaInfo{}, err
	}
	if info.IsDir() {
		return models.MediaInfo{}, errors.New("audio path is a directory")
	}

	media := models.MediaInfo{
		Filename:   filepath.Base(path),
		SizeBytes:  info.Size(),
		Artist:     readArtist(path),
		ModifiedAt: info.ModTime().UTC().Round(time.Second),
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		dur, err := computeMP3Duration(path)
		if err == nil && dur > 0 {
			duration := dur
			media.DurationSeconds = &duration

			bitrate := int(math.Round((float64(info.Size()) * 8) / duration / 1000))
			if bitrate > 0 {
				media.BitrateKbps = &bitrate
			}
		}
	}

	return media, nil
}

func readArtist(path string) *string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	return optionalString(meta.Artist())
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func computeMP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
