package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	ConfirmView
	ExportView
	ResultView
)

const defaultPageSize = 100

// Options configure what the browser loads and where exports go.
type Options struct {
	Format    formatter.Format
	OutputDir string
	PageSize  int
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	conn         connection.Connection
	exporter     *tasks.Exporter
	opts         Options
	width        int
	height       int
	playlistList list.Model
	total        int
	videoList    list.Model
	selected     *media.Playlist
	videos       []*media.Video
	progressChan chan tasks.ProgressUpdate
	done         chan exportComplete
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         bindings
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, conn connection.Connection, exporter *tasks.Exporter, opts Options) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		conn:         conn,
		exporter:     exporter,
		opts:         opts,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		videoList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         defaultBindings(),
	}
}

// Init loads the first page of account playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.videoList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}
	case Msg:
		return m.handleMsg(msg)
	}
	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.total = data.total
		items := make([]list.Item, len(data.playlists))
		for i, p := range data.playlists {
			items[i] = playlistItem{playlist: p}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = fmt.Sprintf("Playlists (%d of %d)", len(items), data.total)
		m.playlistList.SetSize(m.width-4, m.height-8)
	case MsgVideosFetched:
		data := msg.data.(videosFetched)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.selected = data.playlist
		m.videos = data.videos
		items := make([]list.Item, len(data.videos))
		for i, v := range data.videos {
			items[i] = videoItem{video: v}
		}
		m.videoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.videoList.Title = fmt.Sprintf("Videos in '%s'", data.playlist.Name)
		m.videoList.SetSize(m.width-4, m.height-8)
		m.view = VideoListView
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()
	case MsgExportComplete:
		data := msg.data.(exportComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.done = nil
		m.view = ResultView
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.failure.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView(m.keys.footer(m.view, true))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload) && m.err != nil:
		m.err = nil
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.openVideos):
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.fetchVideos(item.playlist)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.backToPlaylists):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.exportPlaylist):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancelExport):
		m.view = VideoListView
		return m, nil
	case key.Matches(msg, m.keys.confirmExport):
		m.view = ExportView
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.view = PlaylistListView
		m.selected = nil
		m.videos = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	ctx, conn, size := m.ctx, m.conn, m.opts.PageSize
	return func() tea.Msg {
		rs, err := media.FindAllPlaylists(ctx, conn, &media.ListOpts{PageSize: size, GetItemCount: true})
		if err != nil {
			return playlistsFetchedMsg(nil, 0, err)
		}
		playlists, err := rs.All()
		total := rs.TotalCount
		if total < len(playlists) {
			total = len(playlists)
		}
		return playlistsFetchedMsg(playlists, total, err)
	}
}

func (m *Model) fetchVideos(p *media.Playlist) tea.Cmd {
	ctx, conn := m.ctx, m.conn
	return func() tea.Msg {
		if len(p.VideoIDs) == 0 {
			return videosFetchedMsg(p, nil, nil)
		}
		rs, err := media.FindVideosByIDs(ctx, conn, p.VideoIDs, nil)
		if err != nil {
			return videosFetchedMsg(p, nil, err)
		}
		videos, err := rs.All()
		return videosFetchedMsg(p, videos, err)
	}
}

// startExport runs the export in the background; progress and completion
// arrive through channels owned by this export.
func (m *Model) startExport() tea.Cmd {
	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportComplete, 1)
	m.progressChan = prog
	m.done = done

	ids := []int64{m.selected.ID}
	opts := tasks.BulkExportOpts{Format: m.opts.Format, OutputDir: m.opts.OutputDir, NumWorkers: 1}
	go func() {
		result, err := m.exporter.BulkExport(m.ctx, prog, ids, opts)
		done <- exportComplete{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	prog, done := m.progressChan, m.done
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-prog:
			return progressUpdateMsg(update)
		case res := <-done:
			return exportCompleteMsg(res.result, res.err)
		}
	}
}

func (m *Model) renderPlaylistList() string {
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.help.ShortHelpView(m.keys.footer(m.view, false)))
}

func (m *Model) renderVideoList() string {
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), m.help.ShortHelpView(m.keys.footer(m.view, false)))
}

func (m *Model) renderConfirm() string {
	p := m.selected
	title := styles.heading.Render(fmt.Sprintf("Export '%s' as %s?", p.Name, m.opts.Format))

	rows := []string{styles.field("ID", p.ID)}
	if p.ReferenceID != "" {
		rows = append(rows, styles.field("Reference ID", p.ReferenceID))
	}
	rows = append(rows, styles.field("Type", p.Type), styles.field("Videos", len(m.videos)))
	if m.opts.OutputDir != "" {
		rows = append(rows, styles.field("Output", m.opts.OutputDir))
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row + "\n")
	}

	helpView := m.help.ShortHelpView(m.keys.footer(m.view, false))
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderExport() string {
	title := styles.heading.Render("Exporting Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.FetchVideos:
		phase = "Resolving videos..."
	case tasks.ExportPlaylist:
		phase = "Writing files..."
	case tasks.WriteManifest:
		phase = "Writing manifest..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.status.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.footer(m.view, false))

	if m.err != nil {
		return styles.failure.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil || len(m.result.Results) == 0 {
		return styles.failure.Render("No result available") + "\n\n" + helpView
	}

	res := m.result.Results[0]
	if !res.Success {
		return styles.skipped.Render(fmt.Sprintf("Could not export '%s': %v", res.PlaylistName, res.Error)) + "\n\n" + helpView
	}

	var b strings.Builder
	b.WriteString(styles.exported.Render(fmt.Sprintf("✓ Exported '%s'", res.PlaylistName)))
	b.WriteString("\n")
	for _, f := range res.Files {
		fmt.Fprintf(&b, "\n  • %s", f)
	}
	if m.result.ManifestPath != "" {
		b.WriteString("\n\n" + styles.field("Manifest", m.result.ManifestPath))
	}
	return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
}
