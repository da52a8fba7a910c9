package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/metrics"
	"github.com/desertthunder/bcx/internal/shared"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
	manifestName     = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: bcx_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 5, max: 10)
	RateLimit  float64          // Playlist lookups per second (default: 5)
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   int64
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

type exportJob struct {
	index  int
	export *formatter.Export
}

type indexedResult struct {
	index int
	res   PlaylistExportResult
}

// BulkExport looks up each playlist and its videos, then writes it in opts.Format.
//
// Lookups run sequentially behind a rate limiter; writes run on a worker pool.
// A failed playlist is recorded in the result and does not stop the others.
// export_manifest.json in the output directory lists every outcome.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.conn == nil {
		return nil, fmt.Errorf("%w: connection not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no playlist ids", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("bcx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(ids)
	result := &BulkExportResult{
		TotalPlaylists:  total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, total)
	results := make(chan indexedResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- indexedResult{job.index, e.writeExport(ctx, job.export, opts)}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(prog, fetchPlaylistUpdate(i+1, total, id))
			export, err := e.fetchExport(ctx, prog, i+1, total, id)
			if err != nil {
				results <- indexedResult{i, PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: fmt.Sprintf("Unknown (%d)", id),
					Error:        err,
				}}
				continue
			}
			jobs <- exportJob{index: i, export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		completed++
		result.Results[r.index] = r.res

		if r.res.Success {
			result.SuccessfulExports++
			metrics.ExportsTotal.WithLabelValues(string(opts.Format), "success").Inc()
			sendProgress(prog, exportCompletedUpdate(completed, total, r.res.PlaylistName, len(r.res.Files)))
		} else {
			result.FailedExports++
			metrics.ExportsTotal.WithLabelValues(string(opts.Format), "failure").Inc()
			e.logger.Warn("export failed", "playlist_id", r.res.PlaylistID, "error", r.res.Error)
			sendProgress(prog, exportFailedUpdate(completed, total, r.res.PlaylistName, r.res.Error))
		}
	}

	// Playlists never reached because of cancellation stay zero-valued.
	result.Results = compactResults(result.Results)

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	sendProgress(prog, manifestUpdate(manifestPath))
	if err := WriteManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// fetchExport looks up one playlist and resolves its videos in a single call.
func (e *Exporter) fetchExport(ctx context.Context, prog chan<- ProgressUpdate, step, total int, id int64) (*formatter.Export, error) {
	p, err := media.FindPlaylistByID(ctx, e.conn, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	if len(p.VideoIDs) == 0 {
		return formatter.NewExport(p, nil), nil
	}

	sendProgress(prog, fetchVideosUpdate(step, total, p.Name, len(p.VideoIDs)))
	rs, err := media.FindVideosByIDs(ctx, e.conn, p.VideoIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch videos for %s: %w", p.Name, err)
	}
	videos, err := rs.All()
	if err != nil {
		return nil, fmt.Errorf("failed to decode videos for %s: %w", p.Name, err)
	}
	return formatter.NewExport(p, videos), nil
}

func (e *Exporter) writeExport(ctx context.Context, export *formatter.Export, opts BulkExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{
		PlaylistID:   export.Playlist.ID,
		PlaylistName: export.Playlist.Name,
		Files:        []string{},
	}

	files, err := formatter.Write(ctx, export, opts.Format, opts.OutputDir)
	if err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return res
	}
	res.Files = files
	res.Success = true
	return res
}

func compactResults(in []PlaylistExportResult) []PlaylistExportResult {
	out := in[:0]
	for _, r := range in {
		if r.PlaylistID != 0 || r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}
