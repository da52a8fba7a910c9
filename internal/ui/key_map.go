package ui

import "github.com/charmbracelet/bubbles/key"

// bindings are the keys the browser reacts to. Row movement belongs to the
// embedded lists.
type bindings struct {
	openVideos      key.Binding
	exportPlaylist  key.Binding
	backToPlaylists key.Binding
	confirmExport   key.Binding
	cancelExport    key.Binding
	reload          key.Binding
	quit            key.Binding
}

func defaultBindings() bindings {
	return bindings{
		openVideos:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show videos")),
		exportPlaylist:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export playlist")),
		backToPlaylists: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "playlists")),
		confirmExport:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "export")),
		cancelExport:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		reload:          key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload playlists")),
		quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// footer lists the bindings offered on view. A failed load only offers reload.
func (b bindings) footer(view ViewState, failed bool) []key.Binding {
	if failed {
		return []key.Binding{b.reload, b.quit}
	}
	switch view {
	case PlaylistListView:
		return []key.Binding{b.openVideos, b.quit}
	case VideoListView:
		return []key.Binding{b.exportPlaylist, b.backToPlaylists, b.quit}
	case ConfirmView:
		return []key.Binding{b.confirmExport, b.cancelExport, b.quit}
	case ExportView:
		return []key.Binding{b.quit}
	default:
		return []key.Binding{b.reload, b.quit}
	}
}
