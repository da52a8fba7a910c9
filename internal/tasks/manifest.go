package tasks

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/shared"
)

type manifestEntry struct {
	PlaylistID   int64    `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files"`
	Error        string   `json:"error,omitempty"`
}

type manifest struct {
	ExportedAt        time.Time       `json:"exported_at"`
	Format            string          `json:"format"`
	OutputDirectory   string          `json:"output_directory"`
	TotalPlaylists    int             `json:"total_playlists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Results           []manifestEntry `json:"results"`
}

// WriteManifest records the outcome of a bulk export as JSON at path.
func WriteManifest(result *BulkExportResult, format formatter.Format, path string) error {
	m := manifest{
		ExportedAt:        time.Now().UTC(),
		Format:            string(format),
		OutputDirectory:   result.OutputDirectory,
		TotalPlaylists:    result.TotalPlaylists,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Results:           make([]manifestEntry, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		entry := manifestEntry{
			PlaylistID:   r.PlaylistID,
			PlaylistName: r.PlaylistName,
			Success:      r.Success,
			Files:        r.Files,
		}
		if entry.Files == nil {
			entry.Files = []string{}
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Results = append(m.Results, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
