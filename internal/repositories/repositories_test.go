package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func featured() models.CachedPlaylistData {
	return models.CachedPlaylistData{
		RemoteID:         24781161001,
		ReferenceID:      "unittest-playlist",
		Name:             "Featured",
		ShortDescription: "Front page",
		Type:             models.PlaylistExplicit,
		VideoIDs:         []int64{11449913001, 24780403001},
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "playlists")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())

		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if p.ID() == "" {
			t.Error("playlist ID should be set after creation")
		}
		if p.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", p.Sequence())
		}
	})

	t.Run("Create rejects invalid playlist", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		if err := repo.Create(models.NewCachedPlaylist(0, models.CachedPlaylistData{Name: "no id"})); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Create rejects duplicate remote id", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		if err := repo.Create(models.NewCachedPlaylist(0, featured())); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := repo.Create(models.NewCachedPlaylist(0, featured())); err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		got, err := repo.Get(p.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.RemoteID() != 24781161001 || got.Name() != "Featured" || got.ReferenceID() != "unittest-playlist" {
			t.Errorf("unexpected playlist: %+v", got)
		}
		if got.Type() != models.PlaylistExplicit {
			t.Errorf("expected EXPLICIT, got %s", got.Type())
		}
		ids := got.VideoIDs()
		if len(ids) != 2 || ids[0] != 11449913001 || ids[1] != 24780403001 {
			t.Errorf("video ids not preserved in order: %v", ids)
		}
		if got.CreatedAt().IsZero() || got.SyncedAt().IsZero() {
			t.Error("timestamps should be loaded")
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("GetByRemoteID", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		got, err := repo.GetByRemoteID(24781161001)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.ID() != p.ID() {
			t.Errorf("expected %s, got %s", p.ID(), got.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		data := featured()
		data.Name = "Renamed"
		data.VideoIDs = nil
		p.Refresh(data)
		if err := repo.Update(p); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		got, _ := repo.Get(p.ID())
		if got.Name() != "Renamed" {
			t.Errorf("expected Renamed, got %s", got.Name())
		}
		if len(got.VideoIDs()) != 0 {
			t.Errorf("expected no video ids, got %v", got.VideoIDs())
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())
		p.SetID("missing")
		if err := repo.Update(p); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		first, created, err := repo.Upsert(featured())
		if err != nil || !created {
			t.Fatalf("expected create, got created=%v err=%v", created, err)
		}

		data := featured()
		data.Name = "Updated"
		second, created, err := repo.Upsert(data)
		if err != nil || created {
			t.Fatalf("expected update, got created=%v err=%v", created, err)
		}
		if second.ID() != first.ID() {
			t.Errorf("upsert should keep the local id")
		}

		all, _ := repo.List(nil)
		if len(all) != 1 || all[0].Name() != "Updated" {
			t.Errorf("unexpected rows after upsert: %v", all)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := models.NewCachedPlaylist(0, featured())
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.Delete(p.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if _, err := repo.Get(p.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("deleted playlist should not be found, got %v", err)
		}
		if err := repo.Delete(p.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("second delete should fail, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		for i, name := range []string{"a", "b", "c"} {
			data := featured()
			data.RemoteID = int64(i + 1)
			data.Name = name
			if name == "c" {
				data.Type = models.PlaylistAlphabetical
				data.ReferenceID = "smart"
			}
			if _, _, err := repo.Upsert(data); err != nil {
				t.Fatalf("failed to upsert: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 || all[0].Name() != "a" || all[2].Name() != "c" {
			t.Errorf("expected sequence order a,b,c, got %v", all)
		}

		smart, _ := repo.List(map[string]any{"playlist_type": models.PlaylistAlphabetical})
		if len(smart) != 1 || smart[0].Name() != "c" {
			t.Errorf("unexpected type filter result: %v", smart)
		}

		byRef, _ := repo.List(map[string]any{"reference_id": "smart"})
		if len(byRef) != 1 {
			t.Errorf("expected 1 playlist by reference id, got %d", len(byRef))
		}

		limited, _ := repo.List(map[string]any{"limit": 2})
		if len(limited) != 2 {
			t.Errorf("expected 2 playlists with limit, got %d", len(limited))
		}
	})
}
