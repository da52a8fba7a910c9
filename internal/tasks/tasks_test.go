package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

// fakeAPI serves playlists and videos from memory, honouring paging.
type fakeAPI struct {
	mu        sync.Mutex
	playlists map[int64]map[string]any
	videos    map[int64]map[string]any
	listCalls int

	// maxPageSize caps page_size the way the live API does.
	maxPageSize int
	hideTotal   bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{playlists: map[int64]map[string]any{}, videos: map[int64]map[string]any{}}
}

func (f *fakeAPI) addPlaylist(id int64, name string, videoIDs ...int64) {
	for _, v := range videoIDs {
		f.videos[v] = map[string]any{"id": v, "name": fmt.Sprintf("video %d", v), "length": 1000}
	}
	f.playlists[id] = map[string]any{
		"id":           id,
		"referenceId":  fmt.Sprintf("ref-%d", id),
		"name":         name,
		"videoIds":     videoIDs,
		"playlistType": "EXPLICIT",
	}
}

func (f *fakeAPI) GetItem(ctx context.Context, command string, params connection.Params) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if command != connection.FindPlaylistByID {
		return nil, shared.ErrNotImplemented
	}
	rec, ok := f.playlists[params["playlist_id"].(int64)]
	if !ok {
		return nil, shared.ErrNoDataFound
	}
	return json.Marshal(rec)
}

func (f *fakeAPI) GetList(ctx context.Context, command string, params connection.Params) (*connection.ItemCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	switch command {
	case connection.FindVideosByIDs:
		ids, err := shared.ParseInts(params["video_ids"].(string))
		if err != nil {
			return nil, err
		}
		page := &connection.ItemCollection{}
		for _, id := range ids {
			if v, ok := f.videos[id]; ok {
				raw, _ := json.Marshal(v)
				page.Items = append(page.Items, raw)
			}
		}
		page.TotalCount = len(page.Items)
		return page, nil

	case connection.FindAllPlaylists:
		size, _ := params["page_size"].(int)
		number, _ := params["page_number"].(int)
		if f.maxPageSize > 0 && size > f.maxPageSize {
			size = f.maxPageSize
		}
		ids := make([]int64, 0, len(f.playlists))
		for id := range f.playlists {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		page := &connection.ItemCollection{TotalCount: len(ids), PageSize: size, PageNumber: number}
		for i := number * size; i < len(ids) && i < (number+1)*size; i++ {
			raw, _ := json.Marshal(f.playlists[ids[i]])
			page.Items = append(page.Items, raw)
		}
		if f.hideTotal {
			page.TotalCount = 0
		}
		return page, nil
	}
	return nil, shared.ErrNotImplemented
}

func (f *fakeAPI) Post(ctx context.Context, method string, params connection.Params) (json.RawMessage, error) {
	return nil, shared.ErrNotImplemented
}

// memoryStore is a PlaylistStore keyed by remote id.
type memoryStore struct {
	rows   map[int64]models.CachedPlaylistData
	reject int64
}

func (m *memoryStore) Upsert(data models.CachedPlaylistData) (*models.CachedPlaylist, bool, error) {
	if data.RemoteID == m.reject {
		return nil, false, errors.New("rejected")
	}
	_, exists := m.rows[data.RemoteID]
	m.rows[data.RemoteID] = data
	return models.NewCachedPlaylist(0, data), !exists, nil
}

func TestSendProgress(t *testing.T) {
	t.Run("nil channel", func(t *testing.T) {
		sendProgress(nil, ProgressUpdate{Message: "ignored"})
	})

	t.Run("full channel does not block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, ProgressUpdate{Message: "first"})
		sendProgress(ch, ProgressUpdate{Message: "dropped"})

		if got := <-ch; got.Message != "first" {
			t.Errorf("expected first update, got %q", got.Message)
		}
		select {
		case u := <-ch:
			t.Errorf("expected no further update, got %q", u.Message)
		default:
		}
	})
}

func TestPhaseString(t *testing.T) {
	if FetchPlaylist.String() != "fetch_playlist" || WriteManifest.String() != "write_manifest" {
		t.Error("unexpected phase names")
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should be empty")
	}
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("pages until total count", func(t *testing.T) {
		api := newFakeAPI()
		for i := int64(1); i <= 5; i++ {
			api.addPlaylist(i, fmt.Sprintf("playlist %d", i), i*100)
		}
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}

		res, err := NewSyncer(api, store, nil).Sync(ctx, nil, 2)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if res.Pages != 3 || res.Created != 5 || res.Updated != 0 {
			t.Errorf("unexpected result %+v", res)
		}
		if len(store.rows) != 5 || store.rows[3].VideoIDs[0] != 300 {
			t.Errorf("unexpected store contents %+v", store.rows)
		}
	})

	t.Run("exact multiple stops on total count", func(t *testing.T) {
		api := newFakeAPI()
		for i := int64(1); i <= 4; i++ {
			api.addPlaylist(i, "p")
		}
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}

		res, err := NewSyncer(api, store, nil).Sync(ctx, nil, 2)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if res.Pages != 2 || api.listCalls != 2 {
			t.Errorf("expected 2 pages, got %d (calls %d)", res.Pages, api.listCalls)
		}
	})

	t.Run("capped page size keeps paging to total count", func(t *testing.T) {
		api := newFakeAPI()
		api.maxPageSize = 2
		for i := int64(1); i <= 5; i++ {
			api.addPlaylist(i, "p")
		}
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}

		res, err := NewSyncer(api, store, nil).Sync(ctx, nil, 10)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if res.Created != 5 || len(store.rows) != 5 {
			t.Errorf("expected all 5 playlists, got %+v (stored %d)", res, len(store.rows))
		}
		if res.Pages != 3 {
			t.Errorf("expected 3 pages, got %d", res.Pages)
		}
	})

	t.Run("short page ends sync without total count", func(t *testing.T) {
		api := newFakeAPI()
		api.hideTotal = true
		for i := int64(1); i <= 3; i++ {
			api.addPlaylist(i, "p")
		}
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}

		res, err := NewSyncer(api, store, nil).Sync(ctx, nil, 2)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if res.Pages != 2 || res.Created != 3 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("second run updates", func(t *testing.T) {
		api := newFakeAPI()
		api.addPlaylist(1, "one")
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}
		syncer := NewSyncer(api, store, nil)

		if _, err := syncer.Sync(ctx, nil, 0); err != nil {
			t.Fatalf("first sync failed: %v", err)
		}
		res, err := syncer.Sync(ctx, nil, 0)
		if err != nil {
			t.Fatalf("second sync failed: %v", err)
		}
		if res.Created != 0 || res.Updated != 1 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("store failures are counted", func(t *testing.T) {
		api := newFakeAPI()
		api.addPlaylist(1, "one")
		api.addPlaylist(2, "two")
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}, reject: 2}

		progress := make(chan ProgressUpdate, 10)
		res, err := NewSyncer(api, store, nil).Sync(ctx, progress, 10)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if res.Created != 1 || res.Failed != 1 {
			t.Errorf("unexpected result %+v", res)
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("fetch errors abort", func(t *testing.T) {
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}
		_, err := NewSyncer(failingAPI{}, store, nil).Sync(ctx, nil, 10)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("requires store", func(t *testing.T) {
		if _, err := NewSyncer(newFakeAPI(), nil, nil).Sync(ctx, nil, 10); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		store := &memoryStore{rows: map[int64]models.CachedPlaylistData{}}
		if _, err := NewSyncer(newFakeAPI(), store, nil).Sync(cctx, nil, 10); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

type failingAPI struct{}

func (failingAPI) GetItem(context.Context, string, connection.Params) (json.RawMessage, error) {
	return nil, shared.ErrServiceUnavailable
}

func (failingAPI) GetList(context.Context, string, connection.Params) (*connection.ItemCollection, error) {
	return nil, shared.ErrServiceUnavailable
}

func (failingAPI) Post(context.Context, string, connection.Params) (json.RawMessage, error) {
	return nil, shared.ErrServiceUnavailable
}
