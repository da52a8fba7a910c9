package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
	"github.com/desertthunder/bcx/internal/tasks"
)

// listOpts maps the shared paging flags onto [media.ListOpts].
func listOpts(cmd *cli.Command) *media.ListOpts {
	return &media.ListOpts{
		Fields:       cmd.StringSlice("fields"),
		PageSize:     cmd.Int("page-size"),
		PageNumber:   cmd.Int("page"),
		SortBy:       models.SortBy(strings.ToUpper(cmd.String("sort-by"))),
		SortOrder:    models.SortOrder(strings.ToUpper(cmd.String("sort-order"))),
		GetItemCount: true,
	}
}

func (r *Runner) printPlaylist(p *media.Playlist) {
	r.writePlainHeader(p.Name)
	r.writePlain("ID:           %d\n", p.ID)
	if p.ReferenceID != "" {
		r.writePlain("Reference ID: %s\n", p.ReferenceID)
	}
	r.writePlain("Type:         %s\n", p.Type)
	if p.ShortDescription != "" {
		r.writePlain("Description:  %s\n", p.ShortDescription)
	}
	if p.ThumbnailURL != "" {
		r.writePlain("Thumbnail:    %s\n", p.ThumbnailURL)
	}
	if len(p.FilterTags) > 0 {
		r.writePlain("Filter tags:  %s\n", strings.Join(p.FilterTags, ", "))
	}
	r.writePlain("Videos (%d):   %s\n", len(p.VideoIDs), shared.JoinInts(p.VideoIDs))
}

func (r *Runner) outputPlaylist(cmd *cli.Command, p *media.Playlist) error {
	if cmd.Bool("json") {
		return r.writeJSON(formatter.MetadataOf(p), cmd.Bool("pretty"))
	}
	r.printPlaylist(p)
	return nil
}

// PlaylistGet looks up a playlist by --id or --ref.
func (r *Runner) PlaylistGet(ctx context.Context, cmd *cli.Command) error {
	id, ref := cmd.Int64("id"), cmd.String("ref")
	if id == 0 && ref == "" {
		return fmt.Errorf("%w: --id or --ref is required", shared.ErrMissingArgument)
	}

	conn, err := r.connection()
	if err != nil {
		return err
	}

	p, err := media.NewPlaylist(ctx, conn, media.PlaylistOpts{
		ID:          id,
		ReferenceID: ref,
		Fields:      cmd.StringSlice("fields"),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}
	return r.outputPlaylist(cmd, p)
}

// PlaylistList runs the finder selected by --ids, --refs or --player-id,
// falling back to every playlist in the account.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connection()
	if err != nil {
		return err
	}

	opts := listOpts(cmd)
	var rs *media.ResultSet[*media.Playlist]
	switch {
	case len(cmd.Int64Slice("ids")) > 0:
		rs, err = media.FindPlaylistsByIDs(ctx, conn, cmd.Int64Slice("ids"), opts)
	case len(cmd.StringSlice("refs")) > 0:
		rs, err = media.FindPlaylistsByReferenceIDs(ctx, conn, cmd.StringSlice("refs"), opts)
	case cmd.Int64("player-id") != 0:
		rs, err = media.FindPlaylistsForPlayerID(ctx, conn, cmd.Int64("player-id"), opts)
	default:
		rs, err = media.FindAllPlaylists(ctx, conn, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	playlists, err := rs.All()
	if err != nil {
		return fmt.Errorf("failed to decode playlists: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]formatter.PlaylistMetadata, len(playlists))
		for i, p := range playlists {
			out[i] = formatter.MetadataOf(p)
		}
		return r.writeJSON(map[string]any{
			"items":       out,
			"total_count": rs.TotalCount,
			"page_number": rs.PageNumber,
			"page_size":   rs.PageSize,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d of %d)", len(playlists), rs.TotalCount))
	for _, p := range playlists {
		ref := p.ReferenceID
		if ref == "" {
			ref = "-"
		}
		r.writePlain("%-14d %-20s %-20s %4d videos  %s\n", p.ID, ref, p.Type, len(p.VideoIDs), p.Name)
	}
	return nil
}

// PlaylistCreate saves a new playlist and prints its server-assigned id.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	playlistType, err := models.ParsePlaylistType(strings.ToUpper(cmd.String("type")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	conn, err := r.connection()
	if err != nil {
		return err
	}

	p, err := media.NewPlaylist(ctx, conn, media.PlaylistOpts{
		Type:             playlistType,
		Name:             cmd.String("name"),
		ShortDescription: cmd.String("description"),
		ThumbnailURL:     cmd.String("thumbnail"),
		VideoIDs:         cmd.Int64Slice("video-id"),
		FilterTags:       cmd.StringSlice("tag"),
	})
	if err != nil {
		return err
	}
	p.ReferenceID = cmd.String("ref")

	if err := p.Save(ctx); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.logger.Info("playlist created", "id", p.ID, "name", p.Name)
	if cmd.Bool("json") {
		return r.writeJSON(formatter.MetadataOf(p), cmd.Bool("pretty"))
	}
	r.writePlain("✓ Created playlist %d: %s\n", p.ID, p.Name)
	return nil
}

// PlaylistUpdate applies only the flags that were set, then saves.
func (r *Runner) PlaylistUpdate(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connection()
	if err != nil {
		return err
	}

	p, err := media.FindPlaylistByID(ctx, conn, cmd.Int64("id"))
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if cmd.IsSet("name") {
		p.Name = cmd.String("name")
	}
	if cmd.IsSet("description") {
		p.ShortDescription = cmd.String("description")
	}
	if cmd.IsSet("video-id") {
		p.VideoIDs = cmd.Int64Slice("video-id")
		p.Videos = nil
	}
	if cmd.IsSet("tag") {
		p.FilterTags = cmd.StringSlice("tag")
	}

	if err := p.Save(ctx); err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	r.logger.Info("playlist updated", "id", p.ID)
	return r.outputPlaylist(cmd, p)
}

// PlaylistDelete removes a playlist, optionally from its players too.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connection()
	if err != nil {
		return err
	}

	id := cmd.Int64("id")
	p, err := media.FindPlaylistByID(ctx, conn, id)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if cmd.Bool("cascade") {
		err = p.DeleteCascade(ctx)
	} else {
		err = p.Delete(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}

	r.logger.Info("playlist deleted", "id", id, "cascade", cmd.Bool("cascade"))
	r.writePlain("✓ Deleted playlist %d: %s\n", id, p.Name)
	return nil
}

// PlaylistExport writes each --id playlist with its videos in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	conn, err := r.connection()
	if err != nil {
		return err
	}

	ids := cmd.Int64Slice("id")
	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	exporter := tasks.NewExporter(conn, shared.WithLogger(r.logger, "component", "export"))
	result, err := exporter.BulkExport(ctx, prog, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Format:      %s\n", format)
	r.writePlain("Directory:   %s\n", result.OutputDirectory)
	r.writePlain("Successful:  %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ %d %s (%d files)\n", res.PlaylistID, res.PlaylistName, len(res.Files))
		} else {
			r.writePlain("  ✗ %d %v\n", res.PlaylistID, res.Error)
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest:    %s\n", result.ManifestPath)
	}

	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d playlists failed to export", result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
