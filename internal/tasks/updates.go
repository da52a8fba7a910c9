package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase; zero when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	FetchVideos
	ExportPlaylist
	FetchPage
	StorePlaylist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchVideos:
		return "fetch_videos"
	case ExportPlaylist:
		return "export_playlist"
	case FetchPage:
		return "fetch_page"
	case StorePlaylist:
		return "store_playlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends without blocking; a nil or full channel drops the update.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchPlaylistUpdate(step, total int, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching playlist %d...", step, total, id),
	}
}

func fetchVideosUpdate(step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving %d videos for %s...", step, total, count, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}

func fetchPageUpdate(page, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page + 1,
		Total:   total,
		Message: fmt.Sprintf("Fetching page %d...", page+1),
	}
}

func storePlaylistUpdate(step, total int, name string, created bool) ProgressUpdate {
	verb := "Updated"
	if created {
		verb = "Cached"
	}
	return ProgressUpdate{
		Phase:   StorePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %s", verb, name),
	}
}
