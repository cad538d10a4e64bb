// package formatter renders listening history and stories for export (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
)

// Format is an export format for the track history.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat accepts text, csv, markdown or md.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return Text, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// ExportHistory renders tracks in format.
func ExportHistory(tracks []models.Track, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return HistoryToCSV(tracks)
	case Markdown:
		return HistoryToMarkdown(tracks), nil
	case Text, "":
		return HistoryToText(tracks), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// HistoryToCSV writes columns Played At, Name, Artist, ID, Album Art, Preview URL
func HistoryToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Played At", "Name", "Artist", "ID", "Album Art", "Preview URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{track.PlayedAt, track.Name, track.Artist, track.ID, track.AlbumArt, track.PreviewURL}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown lists tracks with album art thumbnails, most recent first.
func HistoryToMarkdown(tracks []models.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Recently Played\n\n")
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. **%s** - %s", i+1, track.Name, ArtistOrUnknown(track.Artist))
		if played := PlayedAt(track.PlayedAt); played != "" {
			fmt.Fprintf(&buf, " _(%s)_", played)
		}
		buf.WriteString("\n")
		if track.AlbumArt != "" {
			fmt.Fprintf(&buf, "   ![%s](%s)\n", track.Name, track.AlbumArt)
		}
	}

	return buf.Bytes()
}

// HistoryToText converts tracks to plain text
func HistoryToText(tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Recently played: %d tracks\n\n", len(tracks))
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%2d. %s - %s", i+1, ArtistOrUnknown(track.Artist), track.Name)
		if played := PlayedAt(track.PlayedAt); played != "" {
			fmt.Fprintf(&buf, "  [%s]", played)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// StoryTitle is the heading shown above a story.
func StoryTitle(genre models.Genre) string {
	return fmt.Sprintf("A %s Tale", genre)
}

// StoryToMarkdown wraps story in a titled document.
func StoryToMarkdown(story string, genre models.Genre) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", StoryTitle(genre))
	buf.WriteString("_inspired by your journey_\n\n---\n\n")
	buf.WriteString(strings.TrimSpace(story))
	buf.WriteString("\n")

	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// PlayedAt formats an ISO 8601 timestamp in local time, passing through values it cannot parse.
func PlayedAt(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("Jan 2 15:04")
}

// ArtistOrUnknown substitutes a placeholder for tracks without an artist.
func ArtistOrUnknown(artist string) string {
	if artist == "" {
		return "Unknown artist"
	}
	return artist
}
