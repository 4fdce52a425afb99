package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prefpane/prefpane/internal/server"
	"github.com/prefpane/prefpane/internal/settings"
	"github.com/prefpane/prefpane/internal/settings/codec"
	"github.com/prefpane/prefpane/internal/settings/notify"
	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/source"
)

// skipIfShort skips the test in short mode.
func skipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// newTestServer builds a server on the embedded defaults and schema,
// the same bundle the serve command starts from.
func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	raw, err := source.Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("Load embedded defaults failed: %v", err)
	}
	sch, err := schema.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded schema failed: %v", err)
	}
	base, err := server.NewBase(raw, sch)
	if err != nil {
		t.Fatalf("NewBase failed: %v", err)
	}

	srv := server.New(server.DefaultConfig(), base)
	t.Cleanup(func() { srv.Manager().Close() })
	return srv
}

func doRequest(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func doRawRequest(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response failed: %v\nbody: %s", err, rr.Body.String())
	}
}

func createSession(t *testing.T, srv *server.Server, body any) string {
	t.Helper()

	rr := doRequest(t, srv, http.MethodPost, "/api/sessions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var info server.SessionInfo
	decodeJSON(t, rr, &info)
	return info.ID
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// ====================
// Document Lifecycle
// ====================

// A document assembled from the embedded artifacts survives the full
// loop: mutate, snapshot the delta as a share link, rebuild a second
// document from the link, and land on the same effective tree.
func TestDocument_ShareLinkLoop(t *testing.T) {
	raw, err := source.Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defaults, err := codec.DecodeDefaults(raw)
	if err != nil {
		t.Fatalf("DecodeDefaults failed: %v", err)
	}
	sch, err := schema.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}

	doc, err := settings.New(defaults, settings.WithSchema(sch))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer doc.Close()

	if err := doc.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := doc.Set("editor.fontSize", 16); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if res := doc.Validate(); !res.Valid {
		t.Fatalf("expected valid document, got %+v", res.Errors)
	}

	link, err := codec.EncodeShareLink(doc.Delta())
	if err != nil {
		t.Fatalf("EncodeShareLink failed: %v", err)
	}
	overrides, err := codec.DecodeShareLink(link)
	if err != nil {
		t.Fatalf("DecodeShareLink failed: %v", err)
	}

	clone, err := settings.New(defaults, settings.WithOverrides(overrides))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer clone.Close()

	if !reflect.DeepEqual(doc.Effective(), clone.Effective()) {
		t.Error("expected identical effective trees after share link loop")
	}
	if !reflect.DeepEqual(doc.Changed(), clone.Changed()) {
		t.Errorf("changed sets differ: %v vs %v", doc.Changed(), clone.Changed())
	}
}

// ====================
// HTTP Host Flows
// ====================

func TestServer_ShareLinkBetweenSessions(t *testing.T) {
	srv := newTestServer(t)

	first := createSession(t, srv, map[string]any{
		"overrides": map[string]any{"ui": map[string]any{"theme": "light"}},
	})

	rr := doRequest(t, srv, http.MethodPut, "/api/sessions/"+first+"/values/editor.fontSize", map[string]any{"value": 16})
	if rr.Code != http.StatusOK {
		t.Fatalf("set value: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/sessions/"+first+"/sharelink", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("sharelink: expected 200, got %d", rr.Code)
	}
	var linkResp struct {
		Link string `json:"link"`
	}
	decodeJSON(t, rr, &linkResp)

	second := createSession(t, srv, map[string]any{"shareLink": linkResp.Link})

	var firstEff, secondEff map[string]any
	decodeJSON(t, doRequest(t, srv, http.MethodGet, "/api/sessions/"+first+"/effective", nil), &firstEff)
	decodeJSON(t, doRequest(t, srv, http.MethodGet, "/api/sessions/"+second+"/effective", nil), &secondEff)

	if !reflect.DeepEqual(firstEff, secondEff) {
		t.Error("expected the link-built session to match the source session")
	}
}

func TestServer_ImportExportAcrossFormats(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, nil)

	rr := doRawRequest(t, srv, http.MethodPost, "/api/sessions/"+id+"/import?format=toml", "[editor]\nfontSize = 16\n")
	if rr.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/sessions/"+id+"/export?format=yaml", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected yaml content type, got %q", ct)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("fontSize: 16")) {
		t.Errorf("expected imported value in export, got %s", rr.Body.String())
	}

	var changed []string
	decodeJSON(t, doRequest(t, srv, http.MethodGet, "/api/sessions/"+id+"/changed", nil), &changed)
	if !reflect.DeepEqual(changed, []string{"editor.fontSize"}) {
		t.Errorf("expected [editor.fontSize], got %v", changed)
	}
}

func TestServer_ValidatedImportRejectsBadDocument(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, nil)

	rr := doRawRequest(t, srv, http.MethodPost, "/api/sessions/"+id+"/import?validate=true", `{"editor": {"fontSize": 200}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}

	var delta map[string]any
	decodeJSON(t, doRequest(t, srv, http.MethodGet, "/api/sessions/"+id+"/delta", nil), &delta)
	if len(delta) != 0 {
		t.Errorf("expected rejected import to leave no overrides, got %v", delta)
	}
}

func TestServer_ConcurrentWrites(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, nil)

	const writers = 8
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/api/sessions/%s/values/scratch.p%d", id, i)
			body, _ := json.Marshal(map[string]any{"value": i})
			req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
			rr := httptest.NewRecorder()
			srv.Router().ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				errs <- fmt.Errorf("writer %d: status %d: %s", i, rr.Code, rr.Body.String())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	var changed []string
	decodeJSON(t, doRequest(t, srv, http.MethodGet, "/api/sessions/"+id+"/changed", nil), &changed)
	if len(changed) != writers {
		t.Errorf("expected %d changed paths, got %d: %v", writers, len(changed), changed)
	}
}

func TestServer_ObserverSeesHTTPMutations(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, nil)

	sess, err := srv.Manager().Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	changes := make(chan notify.Change, 4)
	sub := sess.Doc.Subscribe(func(c notify.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	defer sub.Unsubscribe()

	rr := doRequest(t, srv, http.MethodPut, "/api/sessions/"+id+"/values/ui.theme", map[string]any{"value": "light"})
	if rr.Code != http.StatusOK {
		t.Fatalf("set value: expected 200, got %d", rr.Code)
	}

	select {
	case c := <-changes:
		if c.Type != notify.ChangeSet {
			t.Errorf("expected ChangeSet, got %v", c.Type)
		}
		if c.Path != "ui.theme" {
			t.Errorf("expected ui.theme, got %q", c.Path)
		}
		if c.Origin != "edit" {
			t.Errorf("expected edit origin, got %q", c.Origin)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

// ====================
// Defaults Reload Flow
// ====================

// The watcher-driven reload path the serve command wires: after a
// defaults file changes on disk and the base bundle is rebuilt, every
// live session picks up the new defaults while keeping its overrides.
func TestServer_DefaultsReloadFromWatcher(t *testing.T) {
	skipIfShort(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.json")
	writeFile(t, path, `{"ui": {"theme": "dark", "zoomLevel": 1}}`)

	ctx := context.Background()
	raw, err := source.NewFileSource(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	base, err := server.NewBase(raw, nil)
	if err != nil {
		t.Fatalf("NewBase failed: %v", err)
	}

	srv := server.New(server.DefaultConfig(), base)
	defer srv.Manager().Close()

	doc, err := settings.New(base.Defaults, settings.WithOverrides(map[string]any{
		"ui": map[string]any{"theme": "light"},
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sess := srv.Manager().Create(doc)

	reloads := make(chan notify.Change, 1)
	sub := doc.Subscribe(func(c notify.Change) {
		if c.Type == notify.ChangeReload {
			select {
			case reloads <- c:
			default:
			}
		}
	})
	defer sub.Unsubscribe()

	w, err := source.NewWatcher(path, source.WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	writeFile(t, path, `{"ui": {"theme": "dark", "zoomLevel": 2}}`)

	var ev source.Event
	select {
	case ev = <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}

	raw, err = source.NewFileSource(ev.Path).Load(ctx)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	next, err := server.NewBase(raw, nil)
	if err != nil {
		t.Fatalf("NewBase failed: %v", err)
	}
	srv.ReloadBase(next)

	select {
	case c := <-reloads:
		if c.Origin != "defaults" {
			t.Errorf("expected defaults origin, got %q", c.Origin)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload notification")
	}

	eff := sess.Doc.Effective()
	ui, ok := eff["ui"].(map[string]any)
	if !ok {
		t.Fatalf("expected ui section, got %v", eff)
	}
	if ui["zoomLevel"] != float64(2) {
		t.Errorf("expected reloaded zoomLevel 2, got %v", ui["zoomLevel"])
	}
	if ui["theme"] != "light" {
		t.Errorf("expected override to survive reload, got %v", ui["theme"])
	}
}
