package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/shared"
)

// VideoGet looks up a video by --id or --ref.
func (r *Runner) VideoGet(ctx context.Context, cmd *cli.Command) error {
	id, ref := cmd.Int64("id"), cmd.String("ref")
	if id == 0 && ref == "" {
		return fmt.Errorf("%w: --id or --ref is required", shared.ErrMissingArgument)
	}

	conn, err := r.connection()
	if err != nil {
		return err
	}

	var v *media.Video
	if id != 0 {
		v, err = media.FindVideoByID(ctx, conn, id)
	} else {
		v, err = media.FindVideoByReferenceID(ctx, conn, ref)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch video: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.VideoEntryOf(v), cmd.Bool("pretty"))
	}

	r.writePlainHeader(v.Name)
	r.writePlain("ID:           %d\n", v.ID)
	if v.ReferenceID != "" {
		r.writePlain("Reference ID: %s\n", v.ReferenceID)
	}
	r.writePlain("Duration:     %s\n", v.Duration())
	r.writePlain("State:        %s\n", v.ItemState)
	r.writePlain("Plays:        %d (%d this week)\n", v.PlaysTotal, v.PlaysTrailingWeek)
	if len(v.Tags) > 0 {
		r.writePlain("Tags:         %s\n", strings.Join(v.Tags, ", "))
	}
	if !v.PublishedDate.IsZero() {
		r.writePlain("Published:    %s\n", v.PublishedDate.Format("2006-01-02"))
	}
	if v.ShortDescription != "" {
		r.writePlainln("%s", v.ShortDescription)
	}
	return nil
}

// VideoFind runs the finder selected by --ids or the tag flags, falling back
// to every video in the account.
func (r *Runner) VideoFind(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connection()
	if err != nil {
		return err
	}

	opts := listOpts(cmd)
	andTags, orTags := cmd.StringSlice("tag"), cmd.StringSlice("or-tag")

	var rs *media.ResultSet[*media.Video]
	switch {
	case len(cmd.Int64Slice("ids")) > 0:
		rs, err = media.FindVideosByIDs(ctx, conn, cmd.Int64Slice("ids"), opts)
	case len(andTags) > 0 || len(orTags) > 0:
		rs, err = media.FindVideosByTags(ctx, conn, andTags, orTags, opts)
	default:
		rs, err = media.FindAllVideos(ctx, conn, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to find videos: %w", err)
	}

	videos, err := rs.All()
	if err != nil {
		return fmt.Errorf("failed to decode videos: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]formatter.VideoEntry, len(videos))
		for i, v := range videos {
			out[i] = formatter.VideoEntryOf(v)
		}
		return r.writeJSON(map[string]any{
			"items":       out,
			"total_count": rs.TotalCount,
			"page_number": rs.PageNumber,
			"page_size":   rs.PageSize,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Videos (%d of %d)", len(videos), rs.TotalCount))
	for _, v := range videos {
		r.writePlain("%-14d %8s  %s\n", v.ID, v.Duration(), v.Name)
	}
	return nil
}
