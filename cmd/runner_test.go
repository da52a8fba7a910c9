package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/shared"
	tu "github.com/desertthunder/bcx/internal/testing"
)

var featured = map[string]any{
	"id":               42,
	"referenceId":      "featured",
	"name":             "Featured",
	"shortDescription": "Front page rotation",
	"videoIds":         []int64{1, 2},
	"playlistType":     "EXPLICIT",
}

var archive = map[string]any{
	"id":           43,
	"name":         "Archive",
	"videoIds":     []int64{},
	"playlistType": "NEWEST_TO_OLDEST",
}

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "bcx.db")
	config.Log.Level = "error"
	return config
}

// run executes args against a fresh app and returns what it printed.
func run(t *testing.T, config *shared.Config, conn connection.Connection, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Conn:   conn,
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})
	err := newApp(runner).Run(context.Background(), append([]string{"bcx"}, args...))
	return output.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			conn := tu.NewMockConnection()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Conn:       conn,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.conn != conn {
				t.Error("expected connection to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("connection", func(t *testing.T) {
		t.Run("requires credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Brightcove.ReadToken = ""
			config.Brightcove.WriteToken = ""
			runner := NewRunner(RunnerOpts{Config: config})

			_, err := runner.connection()
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("builds an HTTP connection once", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

			first, err := runner.connection()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			second, _ := runner.connection()
			if first != second {
				t.Error("expected the connection to be reused")
			}
			if _, ok := first.(*connection.APIConnection); !ok {
				t.Errorf("expected *connection.APIConnection, got %T", first)
			}
		})

		t.Run("opens the response cache when configured", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
			runner := NewRunner(RunnerOpts{Config: config})
			defer runner.Close()

			if _, err := runner.connection(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.cache == nil {
				t.Error("expected response cache to be opened")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := map[string]bool{}
		for _, cmd := range runner.register() {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "playlist", "video", "cache", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("get by id prints details", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetItem(connection.FindPlaylistByID, featured)

		out, err := run(t, testConfig(t), conn, "playlist", "get", "--id", "42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Featured", "Reference ID: featured", "EXPLICIT", "1,2"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}

		calls := conn.Calls()
		if len(calls) != 1 || calls[0].Params["playlist_id"] != int64(42) {
			t.Errorf("unexpected calls: %+v", calls)
		}
	})

	t.Run("get by reference id as JSON", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetItem(connection.FindPlaylistByReferenceID, featured)

		out, err := run(t, testConfig(t), conn, "playlist", "get", "--ref", "featured", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, `"referenceId": "featured"`) {
			t.Errorf("expected JSON metadata, got:\n%s", out)
		}
	})

	t.Run("get without id or ref", func(t *testing.T) {
		_, err := run(t, testConfig(t), tu.NewMockConnection(), "playlist", "get")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("get reports missing playlists", func(t *testing.T) {
		_, err := run(t, testConfig(t), tu.NewMockConnection(), "playlist", "get", "--id", "7")
		if !errors.Is(err, shared.ErrNoDataFound) {
			t.Errorf("expected ErrNoDataFound, got %v", err)
		}
	})

	t.Run("list picks the finder from flags", func(t *testing.T) {
		conn := tu.NewMockConnection().
			OnGetList(connection.FindPlaylistsByIDs, featured, archive).
			OnGetList(connection.FindAllPlaylists, archive)

		out, err := run(t, testConfig(t), conn, "playlist", "list", "--ids", "42", "--ids", "43")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Featured") || !strings.Contains(out, "Archive") {
			t.Errorf("expected both playlists, got:\n%s", out)
		}

		out, err = run(t, testConfig(t), conn, "playlist", "list", "--page-size", "10")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(out, "Featured") {
			t.Errorf("expected only account playlists, got:\n%s", out)
		}

		calls := conn.Calls()
		if calls[0].Command != connection.FindPlaylistsByIDs || calls[1].Command != connection.FindAllPlaylists {
			t.Errorf("unexpected commands: %+v", calls)
		}
		if calls[1].Params["page_size"] != 10 {
			t.Errorf("expected page_size 10, got %v", calls[1].Params["page_size"])
		}
	})

	t.Run("create posts a new playlist", func(t *testing.T) {
		conn := tu.NewMockConnection().OnPost(connection.CreatePlaylist, 99)

		out, err := run(t, testConfig(t), conn, "playlist", "create",
			"--name", "New", "--type", "explicit", "--video-id", "5", "--video-id", "6")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Created playlist 99: New") {
			t.Errorf("unexpected output:\n%s", out)
		}

		calls := conn.Calls()
		if len(calls) != 1 || calls[0].Method != "post" || calls[0].Command != connection.CreatePlaylist {
			t.Errorf("unexpected calls: %+v", calls)
		}
	})

	t.Run("create rejects unknown types", func(t *testing.T) {
		conn := tu.NewMockConnection()

		_, err := run(t, testConfig(t), conn, "playlist", "create", "--name", "New", "--type", "random")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(conn.Calls()) != 0 {
			t.Error("expected no API calls")
		}
	})

	t.Run("update sends only changed fields through save", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetItem(connection.FindPlaylistByID, featured)

		out, err := run(t, testConfig(t), conn, "playlist", "update", "--id", "42", "--name", "Renamed")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Renamed") {
			t.Errorf("expected renamed playlist, got:\n%s", out)
		}

		calls := conn.Calls()
		if len(calls) != 2 || calls[1].Command != connection.UpdatePlaylist {
			t.Errorf("unexpected calls: %+v", calls)
		}
	})

	t.Run("delete with cascade", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetItem(connection.FindPlaylistByID, featured)

		out, err := run(t, testConfig(t), conn, "playlist", "delete", "--id", "42", "--cascade")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Deleted playlist 42") {
			t.Errorf("unexpected output:\n%s", out)
		}

		calls := conn.Calls()
		last := calls[len(calls)-1]
		if last.Command != connection.DeletePlaylist || last.Params["cascade"] != true {
			t.Errorf("expected cascading delete, got %+v", last)
		}
	})

	t.Run("export writes files and a manifest", func(t *testing.T) {
		conn := tu.NewMockConnection().
			OnGetItem(connection.FindPlaylistByID, featured).
			OnGetList(connection.FindVideosByIDs,
				map[string]any{"id": 1, "name": "Intro", "length": 60000},
				map[string]any{"id": 2, "name": "Outro", "length": 30000},
			)
		dir := t.TempDir()

		out, err := run(t, testConfig(t), conn, "playlist", "export", "--id", "42", "--format", "csv", "--output", dir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Successful:  1/1") {
			t.Errorf("unexpected summary:\n%s", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		_, err := run(t, testConfig(t), tu.NewMockConnection(), "playlist", "export", "--id", "42", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestVideoCommands(t *testing.T) {
	t.Run("get by id", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetItem(connection.FindVideoByID,
			map[string]any{"id": 1, "name": "Intro", "length": 90000, "tags": []string{"news"}})

		out, err := run(t, testConfig(t), conn, "video", "get", "--id", "1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Intro") || !strings.Contains(out, "1m30s") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("find by tags", func(t *testing.T) {
		conn := tu.NewMockConnection().OnGetList(connection.FindVideosByTags,
			map[string]any{"id": 1, "name": "Intro", "length": 60000})

		out, err := run(t, testConfig(t), conn, "video", "find", "--tag", "news", "--or-tag", "sports", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, `"total_count":1`) {
			t.Errorf("unexpected output:\n%s", out)
		}

		call := conn.Calls()[0]
		if call.Command != connection.FindVideosByTags {
			t.Errorf("expected find_videos_by_tags, got %s", call.Command)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	config := testConfig(t)
	conn := tu.NewMockConnection().OnGetList(connection.FindAllPlaylists, featured, archive)

	out, err := run(t, config, conn, "cache", "sync")
	if err != nil {
		t.Fatalf("sync: expected no error, got %v", err)
	}
	if !strings.Contains(out, "2 created, 0 updated, 0 failed") {
		t.Errorf("unexpected sync summary:\n%s", out)
	}

	out, err = run(t, config, conn, "cache", "sync")
	if err != nil {
		t.Fatalf("second sync: expected no error, got %v", err)
	}
	if !strings.Contains(out, "0 created, 2 updated") {
		t.Errorf("expected upserts on second sync, got:\n%s", out)
	}

	out, err = run(t, config, conn, "cache", "list", "--type", "explicit")
	if err != nil {
		t.Fatalf("list: expected no error, got %v", err)
	}
	if !strings.Contains(out, "Featured") || strings.Contains(out, "Archive") {
		t.Errorf("expected only the explicit playlist, got:\n%s", out)
	}
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the template once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if _, err := run(t, testConfig(t), nil, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), "[brightcove]") {
			t.Error("expected brightcove section in written config")
		}

		if _, err := run(t, testConfig(t), nil, "--config", path, "setup", "config"); err == nil {
			t.Error("expected error when config exists")
		}
		if _, err := run(t, testConfig(t), nil, "--config", path, "setup", "config", "--force"); err != nil {
			t.Errorf("expected --force to overwrite, got %v", err)
		}
	})

	t.Run("database runs migrations", func(t *testing.T) {
		config := testConfig(t)

		out, err := run(t, config, nil, "setup", "database")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "schema version 1") {
			t.Errorf("unexpected output:\n%s", out)
		}
		tu.AssertFileExists(t, config.Database.Path)
	})
}
