// package formatter writes playlists and their videos as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name; "md" and "text" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Export is a playlist with its videos resolved, in playlist order.
type Export struct {
	Playlist *media.Playlist
	Videos   []*media.Video
}

// NewExport orders videos by the playlist's VideoIDs. Ids with no matching
// video are skipped.
func NewExport(p *media.Playlist, videos []*media.Video) *Export {
	byID := make(map[int64]*media.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	ordered := make([]*media.Video, 0, len(p.VideoIDs))
	for _, id := range p.VideoIDs {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return &Export{Playlist: p, Videos: ordered}
}

// formatDuration renders milliseconds as m:ss, or h:mm:ss past an hour.
func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// ExportToCSV writes one row per video: ID, Reference ID, Name, Duration, Plays, Published, Tags
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Reference ID", "Name", "Duration", "Plays", "Published", "Tags"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range export.Videos {
		record := []string{
			strconv.FormatInt(v.ID, 10),
			v.ReferenceID,
			v.Name,
			formatDuration(v.Length),
			strconv.FormatInt(v.PlaysTotal, 10),
			formatDate(v.PublishedDate),
			strings.Join(v.Tags, ";"),
		}
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

// ExportToMarkdown renders the playlist with an optional thumbnail image
func ExportToMarkdown(export *Export, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Thumbnail](%s)\n\n", imageFilename)
	}

	if p.ShortDescription != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.ShortDescription)
	}

	fmt.Fprintf(&buf, "**ID**: %d\n", p.ID)
	if p.ReferenceID != "" {
		fmt.Fprintf(&buf, "**Reference ID**: %s\n", p.ReferenceID)
	}
	fmt.Fprintf(&buf, "**Type**: %s\n", p.Type)
	if len(p.FilterTags) > 0 {
		fmt.Fprintf(&buf, "**Filter tags**: %s\n", strings.Join(p.FilterTags, ", "))
	}
	fmt.Fprintf(&buf, "**Videos**: %d\n\n", len(p.VideoIDs))

	buf.WriteString("## Videos\n\n")
	for i, v := range export.Videos {
		fmt.Fprintf(&buf, "%d. %s [%s]", i+1, v.Name, formatDuration(v.Length))
		if v.ReferenceID != "" {
			fmt.Fprintf(&buf, " `%s`", v.ReferenceID)
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// ExportToText renders the playlist as plain text
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	if p.ShortDescription != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.ShortDescription)
	}
	fmt.Fprintf(&buf, "Videos: %d\n\n", len(p.VideoIDs))

	for i, v := range export.Videos {
		fmt.Fprintf(&buf, "%d. %s (%d)\n", i+1, v.Name, v.ID)
	}

	return buf.Bytes(), nil
}

// PlaylistMetadata is the JSON view of a playlist without its videos.
type PlaylistMetadata struct {
	ID               int64    `json:"id"`
	ReferenceID      string   `json:"referenceId,omitempty"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	ThumbnailURL     string   `json:"thumbnailURL,omitempty"`
	PlaylistType     string   `json:"playlistType"`
	VideoIDs         []int64  `json:"videoIds"`
	FilterTags       []string `json:"filterTags,omitempty"`
}

// VideoEntry is the JSON view of one video.
type VideoEntry struct {
	ID               int64     `json:"id"`
	ReferenceID      string    `json:"referenceId,omitempty"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Length           int64     `json:"length"`
	PlaysTotal       int64     `json:"playsTotal"`
	ItemState        string    `json:"itemState,omitempty"`
	PublishedDate    time.Time `json:"publishedDate,omitzero"`
}

func MetadataOf(p *media.Playlist) PlaylistMetadata {
	ids := p.VideoIDs
	if ids == nil {
		ids = []int64{}
	}
	return PlaylistMetadata{
		ID:               p.ID,
		ReferenceID:      p.ReferenceID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		ThumbnailURL:     p.ThumbnailURL,
		PlaylistType:     string(p.Type),
		VideoIDs:         ids,
		FilterTags:       p.FilterTags,
	}
}

func VideoEntryOf(v *media.Video) VideoEntry {
	return VideoEntry{
		ID:               v.ID,
		ReferenceID:      v.ReferenceID,
		Name:             v.Name,
		ShortDescription: v.ShortDescription,
		Tags:             v.Tags,
		Length:           v.Length,
		PlaysTotal:       v.PlaysTotal,
		ItemState:        string(v.ItemState),
		PublishedDate:    v.PublishedDate,
	}
}

// ToMetadataJSON renders playlist metadata without videos
func ToMetadataJSON(p *media.Playlist) ([]byte, error) {
	return shared.MarshalJSON(MetadataOf(p), true)
}

// ExportToJSON renders the playlist metadata with its videos
func ExportToJSON(export *Export) ([]byte, error) {
	out := struct {
		Playlist PlaylistMetadata `json:"playlist"`
		Videos   []VideoEntry     `json:"videos"`
	}{Playlist: MetadataOf(export.Playlist), Videos: []VideoEntry{}}

	for _, v := range export.Videos {
		out.Videos = append(out.Videos, VideoEntryOf(v))
	}
	return shared.MarshalJSON(out, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// baseName is the file stem for exports of p: the reference id when set, else the id.
func baseName(p *media.Playlist) string {
	if p.ReferenceID != "" {
		return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(p.ReferenceID)
	}
	return strconv.FormatInt(p.ID, 10)
}

// Write exports in the given format under dir and returns the files created.
func Write(ctx context.Context, export *Export, format Format, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	base := filepath.Join(dir, baseName(export.Playlist))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{res.VideosFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := WriteMarkdownExport(ctx, export, base, export.Playlist.ThumbnailURL)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(export, base+"_videos.txt")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatJSON:
		path, err := WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	VideosFile   string
	MetadataFile string
}

// WriteCSVExport creates {base}_videos.csv and {base}_metadata.json.
func WriteCSVExport(export *Export, base string) (*CSVExportResult, error) {
	if base == "" {
		base = baseName(export.Playlist)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	videosFile := base + "_videos.csv"
	if err := os.WriteFile(videosFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{VideosFile: videosFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Thumbnail string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL downloads,
// {dir}/thumbnail.jpg. A failed download is logged and skipped.
func WriteMarkdownExport(ctx context.Context, export *Export, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = baseName(export.Playlist)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var imageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(ctx, imageURL)
		if err != nil {
			log.Warn("failed to download thumbnail", "url", imageURL, "error", err)
		} else {
			imageFilename = "thumbnail.jpg"
			imagePath := filepath.Join(outputDir, imageFilename)
			if err := os.WriteFile(imagePath, imageData, 0644); err != nil {
				log.Warn("failed to save thumbnail", "path", imagePath, "error", err)
				imageFilename = ""
			} else {
				result.Thumbnail = imagePath
				result.Files = append(result.Files, imagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, imageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the plain text rendering, defaulting to {base}_videos.txt.
func WriteTextExport(export *Export, path string) (string, error) {
	if path == "" {
		path = baseName(export.Playlist) + "_videos.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the JSON rendering, defaulting to {base}.json.
func WriteJSONExport(export *Export, path string) (string, error) {
	if path == "" {
		path = baseName(export.Playlist) + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}
