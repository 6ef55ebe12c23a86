package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/dmitrijs2005/snapnote/internal/server/collector"
	"github.com/dmitrijs2005/snapnote/internal/server/notify"
	"github.com/dmitrijs2005/snapnote/internal/server/receipts"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu     sync.Mutex
	counts []int
	err    error
	report notify.Report
}

func (f *fakeNotifier) Dispatch(ctx context.Context, count int) (notify.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = append(f.counts, count)
	return f.report, f.err
}

type testEnv struct {
	srv      *Server
	handler  http.Handler
	registry *subscriptions.FileRegistry
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	reg, err := subscriptions.Load(filepath.Join(t.TempDir(), "subs.json"))
	require.NoError(t, err)

	n := &fakeNotifier{}
	col := collector.NewService(receipts.NewMemoryRepository(), logging.Discard())
	s := NewServer(opts, logging.Discard(), col, reg, n)
	s.now = func() time.Time { return time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC) }

	return &testEnv{srv: s, handler: s.Handler(), registry: reg, notifier: n}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func noteRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile(common.FieldImage, common.ImageFileName)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, common.PathNotes, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPing(t *testing.T) {
	e := newTestEnv(t, Options{})
	rec := e.do(httptest.NewRequest(http.MethodGet, common.PathPing, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"time":"2025-05-06T07:08:09Z"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestPublicKey(t *testing.T) {
	e := newTestEnv(t, Options{PublicKey: "BPub"})
	rec := e.do(httptest.NewRequest(http.MethodGet, common.PathPublicKey, nil))
	assert.JSONEq(t, `{"key":"BPub"}`, rec.Body.String())

	e = newTestEnv(t, Options{})
	rec = e.do(httptest.NewRequest(http.MethodGet, common.PathPublicKey, nil))
	assert.JSONEq(t, `{"key":""}`, rec.Body.String())
}

func TestSubscribe(t *testing.T) {
	e := newTestEnv(t, Options{})

	body := `{"endpoint":"https://push.example/1","expirationTime":null,"keys":{"p256dh":"pk","auth":"ak"}}`
	rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSubscribe, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	// same endpoint again replaces
	rec = e.do(httptest.NewRequest(http.MethodPost, common.PathSubscribe, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	all, err := e.registry.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "ak", all[0].Keys.Auth)
}

func TestSubscribe_MissingEndpoint(t *testing.T) {
	e := newTestEnv(t, Options{})

	for _, body := range []string{`{}`, `{"keys":{"auth":"a"}}`, ``} {
		rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSubscribe, strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"ok":false,"error":"Missing subscription.endpoint"}`, rec.Body.String())
	}
}

func TestSubscribe_InvalidJSON(t *testing.T) {
	e := newTestEnv(t, Options{})
	rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSubscribe, strings.NewReader(`{nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadNote(t *testing.T) {
	e := newTestEnv(t, Options{})
	fields := map[string]string{"id": "n1", "text": "hello", "createdAt": "1000"}

	rec := e.do(noteRequest(t, fields, []byte{0xff, 0xd8}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"duplicate":false}`, rec.Body.String())

	rec = e.do(noteRequest(t, fields, []byte{0xff, 0xd8}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"duplicate":true}`, rec.Body.String())
}

func TestUploadNote_BadRequests(t *testing.T) {
	e := newTestEnv(t, Options{MaxUploadBytes: 1024})

	tests := []struct {
		name   string
		fields map[string]string
		image  []byte
		want   string
	}{
		{name: "missing id", fields: map[string]string{"createdAt": "1"}, image: []byte{1}, want: "Missing id"},
		{name: "bad createdAt", fields: map[string]string{"id": "x", "createdAt": "soon"}, image: []byte{1}, want: "Invalid createdAt"},
		{name: "missing createdAt", fields: map[string]string{"id": "x"}, image: []byte{1}, want: "Invalid createdAt"},
		{name: "missing image", fields: map[string]string{"id": "x", "createdAt": "1"}, want: "Missing image"},
		{name: "too large", fields: map[string]string{"id": "x", "createdAt": "1"}, image: make([]byte, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(noteRequest(t, tt.fields, tt.image))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, false, body["ok"])
			if tt.want != "" {
				assert.Equal(t, tt.want, body["error"])
			}
		})
	}
}

func TestUploadNote_NotMultipart(t *testing.T) {
	e := newTestEnv(t, Options{})
	req := httptest.NewRequest(http.MethodPost, common.PathNotes, strings.NewReader(`{"id":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := e.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncCompleted(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.notifier.report = notify.Report{Attempted: 2, Delivered: 1, Pruned: 1}

	rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSyncCompleted, strings.NewReader(`{"count":1}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"attempted":2,"delivered":1,"pruned":1}`, rec.Body.String())

	rec = e.do(httptest.NewRequest(http.MethodPost, common.PathSyncCompleted, strings.NewReader(`{}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []int{1, 0}, e.notifier.counts)
}

func TestSyncCompleted_BadRequests(t *testing.T) {
	e := newTestEnv(t, Options{})

	for _, body := range []string{`{"count":-1}`, `{"count":"x"}`, `{"count":1.5}`, `not json`} {
		rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSyncCompleted, strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, e.notifier.counts)
}

func TestSyncCompleted_MissingCredentials(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.notifier.err = common.ErrMissingCredentials

	rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSyncCompleted, strings.NewReader(`{"count":3}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Missing VAPID keys"}`, rec.Body.String())
}

func TestSyncCompleted_DispatchError(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.notifier.err = errors.New("disk full")

	rec := e.do(httptest.NewRequest(http.MethodPost, common.PathSyncCompleted, strings.NewReader(`{"count":3}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFoundAndMethods(t *testing.T) {
	e := newTestEnv(t, Options{})

	rec := e.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(httptest.NewRequest(http.MethodGet, common.PathNotes, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	e := newTestEnv(t, Options{StaticDir: dir})

	rec := e.do(httptest.NewRequest(http.MethodGet, "/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = e.do(httptest.NewRequest(http.MethodGet, "/some/client/route", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())

	rec = e.do(httptest.NewRequest(http.MethodGet, common.PathPing, nil))
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestStatic_PathBelowFileFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	e := newTestEnv(t, Options{StaticDir: dir})

	for _, p := range []string{"/index.html/x", "/app.js/deep/route"} {
		rec := e.do(httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusOK, rec.Code, p)
		assert.Equal(t, "<html>app</html>", rec.Body.String(), p)
	}
}
