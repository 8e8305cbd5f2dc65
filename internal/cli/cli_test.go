package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/config"
	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/service"
)

// ---- helpers ----

// useFileStore points the CLI at a fresh file store in an isolated working
// directory so no .env from the repo is picked up.
func useFileStore(t *testing.T) string {
	t.Helper()
	chdir(t, t.TempDir())
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", config.DriverFile)
	t.Setenv("STORE_PATH", dir)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LINK_SCHEME", "loopspot")
	t.Setenv("LINK_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// createPicnic runs the create command and returns the new loop id.
func createPicnic(t *testing.T) string {
	t.Helper()
	out, err := runCLI(t, "create", "--name", "Picnic", "--start", "2025-06-01 14:00", "--end", "2025-06-01 18:00", "--stay", "2h")
	require.NoError(t, err)
	first, _, _ := strings.Cut(out, "\n")
	fields := strings.Fields(first)
	require.Len(t, fields, 3, "unexpected create output: %q", out)
	return fields[2]
}

// ---- commands ----

func TestCreate_PrintsShareMessage(t *testing.T) {
	useFileStore(t)

	out, err := runCLI(t, "create", "--name", "  Picnic ", "--start", "2025-06-01T14:00:00Z", "--end", "2025-06-01T18:00:00Z")
	require.NoError(t, err)

	assert.Contains(t, out, "Created loop loop_")
	assert.Contains(t, out, `Join my loop "Picnic"`)
	assert.Contains(t, out, "loopspot://loop/loop_")
}

func TestCreate_EndBeforeStart(t *testing.T) {
	useFileStore(t)

	_, err := runCLI(t, "create", "--name", "Picnic", "--start", "2025-06-01 18:00", "--end", "2025-06-01 14:00")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestCreate_MissingStart(t *testing.T) {
	useFileStore(t)

	_, err := runCLI(t, "create", "--name", "Picnic", "--end", "2025-06-01 14:00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")
}

func TestList_ShowsCreatedLoop(t *testing.T) {
	useFileStore(t)
	id := createPicnic(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Picnic")
	assert.Contains(t, out, "2025-06-01 14:00")
	assert.Contains(t, out, "1 of 1 loops")
}

func TestList_Empty(t *testing.T) {
	useFileStore(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No loops found.\n", out)
}

func TestShareThenOpenOnAnotherDevice(t *testing.T) {
	useFileStore(t)
	id := createPicnic(t)

	link, err := runCLI(t, "share", "--url", id)
	require.NoError(t, err)
	link = strings.TrimSpace(link)
	assert.True(t, strings.HasPrefix(link, "loopspot://loop/"+id), link)

	// Second device: a different, empty store.
	t.Setenv("STORE_PATH", t.TempDir())
	out, err := runCLI(t, "open", link)
	require.NoError(t, err)
	assert.Contains(t, out, "Picnic ("+id+")")
	assert.Contains(t, out, "2025-06-01 14:00 to 2025-06-01 18:00")
	assert.Contains(t, out, "stay: 2h")

	list, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, list, id)
}

func TestOpen_UnknownLink(t *testing.T) {
	useFileStore(t)

	_, err := runCLI(t, "open", "loopspot://loop/loop_missing")
	assert.ErrorIs(t, err, errLoopNotOnDevice)

	_, err = runCLI(t, "open", "loopspot://elsewhere")
	assert.ErrorIs(t, err, errLoopNotOnDevice)
}

func TestDiscard(t *testing.T) {
	useFileStore(t)
	id := createPicnic(t)

	out, err := runCLI(t, "discard", id)
	require.NoError(t, err)
	assert.Equal(t, "Discarded loop "+id+"\n", out)

	_, err = runCLI(t, "share", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = runCLI(t, "discard", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExport_WritesRows(t *testing.T) {
	useFileStore(t)
	id := createPicnic(t)

	out, err := runCLI(t, "export")
	require.NoError(t, err)

	var rows []domain.ExportRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].LoopID)
	assert.Equal(t, "Picnic", rows[0].LoopName)
	assert.Nil(t, rows[0].Latitude)
}

func TestInvalidConfig(t *testing.T) {
	useFileStore(t)
	t.Setenv("STORE_DRIVER", "etcd")

	_, err := runCLI(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "loopd version dev\n", out)
}

// ---- serve wiring ----

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Defaults()
	cfg.StoreDriver = config.DriverMemory
	cfg.DisplayName = "Ada"
	a, err := newApp(context.Background(), cfg, newLogger("error", &bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestRouter_ServesAPI(t *testing.T) {
	a := newTestApp(t)
	h := a.newRouter(&domain.Coordinate{Latitude: 51.5, Longitude: -0.12})

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/openapi.yaml", http.StatusOK},
		{"/profile", http.StatusOK},
		{"/loops", http.StatusOK},
		{"/loops/loop_missing", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestRouter_MapCenterUsesHere(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.newRouter(&domain.Coordinate{Latitude: 51.5, Longitude: -0.12}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map/center", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got service.Region
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Located)
	assert.Equal(t, 51.5, got.Center.Latitude)

	rec = httptest.NewRecorder()
	a.newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map/center", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Located)
	assert.Equal(t, a.cfg.DefaultLatitude, got.Center.Latitude)
}

func TestRouter_CreateThenSession(t *testing.T) {
	a := newTestApp(t)
	h := a.newRouter(nil)

	body := `{"name":"Picnic","startAt":"2025-06-01T14:00:00Z","endAt":"2025-06-01T18:00:00Z"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/loops", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Loop struct {
			ID string `json:"id"`
		} `json:"loop"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loops/"+created.Loop.ID+"/session", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"idle"`)
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    *domain.Coordinate
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "51.5,-0.12", want: &domain.Coordinate{Latitude: 51.5, Longitude: -0.12}},
		{in: " 37.7 , -122.4 ", want: &domain.Coordinate{Latitude: 37.7, Longitude: -122.4}},
		{in: "51.5", wantErr: true},
		{in: "north,-0.12", wantErr: true},
		{in: "91,0", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseCoordinate(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
