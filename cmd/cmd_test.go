package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gdrive "google.golang.org/api/drive/v3"

	"fieldops-drive/config"
	"fieldops-drive/drive"
	"fieldops-drive/models"
	"fieldops-drive/storage"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestPrintFiles(t *testing.T) {
	var out bytes.Buffer
	printFiles(&out, []*gdrive.File{
		{Id: "1a", Name: "feeder-north.kml", MimeType: drive.KMLMimeType},
		{Id: "9z", Name: "archive", MimeType: drive.FolderMimeType},
	})

	assert.Equal(t, "Files:\n"+
		"feeder-north.kml (application/vnd.google-earth.kml+xml) 1a\n"+
		"archive (application/vnd.google-apps.folder) 9z [folder]\n", out.String())
}

func TestPrintFiles_Empty(t *testing.T) {
	var out bytes.Buffer
	printFiles(&out, []*gdrive.File{})

	assert.Equal(t, "No files found.\n", out.String())
}

func TestFilesCommand_ListsFolderWithAPIKey(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "'folder-xyz' in parents", r.URL.Query().Get("q"))
		assert.Equal(t, "cli-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"files": [{"id": "1a", "name": "route.kml", "mimeType": "application/vnd.google-earth.kml+xml"}]}`)
	}))
	defer upstream.Close()

	t.Setenv(config.KeyAPIKey, "cli-key")
	t.Setenv(config.KeyFolderID, "folder-xyz")
	t.Setenv(config.KeyDriveEndpoint, upstream.URL+"/")

	out, err := execute(t, "", "files")

	require.NoError(t, err)
	assert.Contains(t, out, "route.kml (application/vnd.google-earth.kml+xml) 1a")
}

func TestFilesCommand_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	t.Setenv(config.KeyAPIKey, "cli-key")
	t.Setenv(config.KeyFolderID, "folder-xyz")
	t.Setenv(config.KeyDriveEndpoint, upstream.URL+"/")

	_, err := execute(t, "", "files")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch files")
}

func TestAuditCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	db := storage.NewSQLiteDB(path)
	require.NoError(t, db.Initialize())
	require.NoError(t, db.Record(context.Background(), &models.AuditEntry{
		RequestID: "req-1",
		Route:     models.RouteDownload,
		FileID:    "abc123",
		Status:    http.StatusInternalServerError,
		Error:     "upstream 404",
	}))
	require.NoError(t, db.Close())

	out, err := execute(t, "", "audit", "list", "--audit-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 most recent requests")
	assert.Contains(t, out, "download abc123")
	assert.Contains(t, out, "error=upstream 404")

	out, err = execute(t, "no\n", "audit", "clear", "--audit-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure")

	out, err = execute(t, "", "audit", "list", "--audit-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 most recent requests")

	_, err = execute(t, "", "audit", "clear", "--audit-db", path)
	require.NoError(t, err)

	out, err = execute(t, "", "audit", "list", "--audit-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 most recent requests")

	_, err = execute(t, "yes\n", "audit", "clear", "--audit-db", path)
	require.NoError(t, err)

	out, err = execute(t, "", "audit", "list", "--audit-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 0 most recent requests")
}

func TestOpenAuditDB_NotConfigured(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg = config.Config{}

	db, err := openAuditDB()

	assert.Nil(t, db)
	assert.ErrorContains(t, err, config.KeyAuditDB)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("terminal detached")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name      string
		in        io.Reader
		want      bool
		expectErr bool
	}{
		{name: "yes", in: strings.NewReader("yes\n"), want: true},
		{name: "yes without newline", in: strings.NewReader("YES"), want: true},
		{name: "no", in: strings.NewReader("no\n")},
		{name: "closed input", in: strings.NewReader("")},
		{name: "read error", in: failingReader{}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			ok, err := confirm(tt.in, &out, "sure? ")

			assert.Equal(t, "sure? ", out.String())
			if tt.expectErr {
				assert.ErrorContains(t, err, "terminal detached")
				assert.False(t, ok)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func writeAuthFiles(t *testing.T) (credentials, token string) {
	t.Helper()

	dir := t.TempDir()
	credentials = filepath.Join(dir, "credentials.json")
	token = filepath.Join(dir, "token.json")

	require.NoError(t, os.WriteFile(credentials, []byte(`{
		"installed": {
			"client_id": "client-id.apps.googleusercontent.com",
			"client_secret": "client-secret",
			"redirect_uris": ["urn:ietf:wg:oauth:2.0:oob"],
			"auth_uri": "https://accounts.example/auth",
			"token_uri": "https://accounts.example/token"
		}
	}`), 0600))
	require.NoError(t, os.WriteFile(token, []byte(`{"access_token": "cached-access", "token_type": "Bearer"}`), 0600))
	return credentials, token
}

func TestAuthCommand_ListsFolderWithCachedToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "'folder-oauth' in parents", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer cached-access", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"files": [
			{"id": "1a", "name": "feeder.kml", "mimeType": "application/vnd.google-earth.kml+xml"},
			{"id": "9z", "name": "archive", "mimeType": "application/vnd.google-apps.folder"}
		]}`)
	}))
	defer upstream.Close()

	credentials, token := writeAuthFiles(t)
	t.Setenv(config.KeyDriveEndpoint, upstream.URL+"/")

	out, err := execute(t, "", "auth", "--credentials", credentials, "--token", token, "--folder", "folder-oauth")

	require.NoError(t, err)
	assert.Contains(t, out, "feeder.kml (application/vnd.google-earth.kml+xml) 1a\n")
	assert.Contains(t, out, "archive (application/vnd.google-apps.folder) 9z [folder]\n")
}

func TestAuthCommand_NoFolderSkipsListing(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	credentials, token := writeAuthFiles(t)
	t.Setenv(config.KeyDriveEndpoint, upstream.URL+"/")
	t.Setenv(config.KeyFolderID, "")

	out, err := execute(t, "", "auth", "--credentials", credentials, "--token", token, "--folder", "")

	require.NoError(t, err)
	assert.NotContains(t, out, "Files:")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestAuthCommand_MissingCredentials(t *testing.T) {
	_, err := execute(t, "", "auth", "--credentials", filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error loading client secret file")
}
