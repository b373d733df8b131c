package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"prysma/internal/layout"
	"prysma/internal/model"
	"prysma/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
	rows     map[string][]model.Section
	// fetchFailures makes that many FetchSections calls fail before fetches succeed.
	fetchFailures int
}

func newFakeStore(userIDs ...string) *fakeStore {
	fs := &fakeStore{profiles: map[string]model.Profile{}, rows: map[string][]model.Section{}}
	for _, id := range userIDs {
		fs.profiles[id] = model.Profile{ID: id, DisplayName: strings.ToUpper(id)}
	}
	return fs
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) FetchSections(ctx context.Context, userID string) ([]model.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchFailures > 0 {
		f.fetchFailures--
		return nil, errors.New("connection reset")
	}
	return model.CloneSections(f.rows[userID]), nil
}

func (f *fakeStore) SaveSections(ctx context.Context, userID string, sections []model.Section) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[userID] = store.ValidSections(sections)
	return nil
}

func (f *fakeStore) saved(userID string) []model.Section {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.CloneSections(f.rows[userID])
}

func newTestServer(t *testing.T, cfg ServerConfig, st Store) (*Server, *httptest.Server) {
	t.Helper()
	cfg.WriteDebounce = time.Hour
	srv, err := NewServer(cfg, st)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close(context.Background())
	})
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any, header http.Header) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

type stateResp struct {
	UserID    string          `json:"userId"`
	Card      []model.Section `json:"card"`
	SocialBar []model.Section `json:"socialBar"`
	Error     string          `json:"error"`
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{}, newFakeStore())
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", string(body))
}

func TestLayoutLifecycle(t *testing.T) {
	fs := newFakeStore("ana")
	srv, ts := newTestServer(t, ServerConfig{}, fs)
	base := ts.URL + "/users/ana"

	resp, body := doJSON(t, http.MethodGet, base+"/layout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var added struct {
		Section model.Section `json:"section"`
		State   stateResp     `json:"state"`
	}
	resp, body = doJSON(t, http.MethodPost, base+"/sections", map[string]string{"type": "bio"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &added))
	require.Equal(t, "bio", added.Section.Type)
	require.Len(t, added.State.Card, 1)

	resp, body = doJSON(t, http.MethodPost, base+"/sections", map[string]string{"type": "github"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodPatch, base+"/sections/"+added.Section.ID,
		map[string]any{"title": "About", "value": "Hello there"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var st stateResp
	require.NoError(t, json.Unmarshal(body, &st))
	require.Equal(t, "About", st.Card[0].Title)
	require.Equal(t, model.TextValue("Hello there"), st.Card[0].Value)
	require.Len(t, st.SocialBar, 1)

	// Wrong value shape for a text section.
	resp, _ = doJSON(t, http.MethodPatch, base+"/sections/"+added.Section.ID,
		map[string]any{"value": []any{map[string]string{"title": "x"}}}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/layout/reorder", map[string]int{"from": 0, "to": 9}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodDelete, base+"/sections/"+added.Section.ID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &st))
	require.Empty(t, st.Card)

	require.NoError(t, srv.Close(context.Background()))
	saved := fs.saved("ana")
	require.Len(t, saved, 1)
	require.Equal(t, "github", saved[0].Type)

	resp, _ = doJSON(t, http.MethodGet, base+"/layout", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDropEndpoint(t *testing.T) {
	fs := newFakeStore("ana")
	_, ts := newTestServer(t, ServerConfig{}, fs)
	base := ts.URL + "/users/ana/layout"

	resp, body := doJSON(t, http.MethodPost, base+"/drop",
		layout.DragEvent{CatalogType: "projects", Target: model.AreaSocialBar}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Result layout.DropResult `json:"result"`
		State  stateResp         `json:"state"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, layout.DropIgnored, out.Result.Outcome)
	require.Empty(t, out.State.Card)
	require.Empty(t, out.State.SocialBar)

	resp, body = doJSON(t, http.MethodPost, base+"/drop",
		layout.DragEvent{CatalogType: "instagram", Target: model.AreaMain}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, layout.DropRedirected, out.Result.Outcome)
	require.Len(t, out.State.SocialBar, 1)

	resp, body = doJSON(t, http.MethodPost, base+"/drag-start", layout.DragEvent{CatalogType: "bio"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Contains(t, string(body), `"validTargets":["main"]`)

	resp, _ = doJSON(t, http.MethodPost, base+"/drop", map[string]any{"bogus": true}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownUserIs404(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{}, newFakeStore("ana"))
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/users/bob/layout", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(body), `"error"`)
}

func TestCatalogExclude(t *testing.T) {
	fs := newFakeStore("ana")
	fs.rows["ana"] = []model.Section{{ID: "1", Type: "bio"}}
	_, ts := newTestServer(t, ServerConfig{}, fs)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/catalog", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"type":"bio"`)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/catalog?exclude=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(body), `"type":"bio"`)
	require.Contains(t, string(body), `"type":"skills"`)
}

func TestTokenAuth(t *testing.T) {
	secret := []byte("test-secret")
	_, ts := newTestServer(t, ServerConfig{AuthMode: "token", SessionSecret: secret}, newFakeStore("ana", "bob"))

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/users/ana/layout", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, claims, err := IssueToken(secret, "ana", time.Hour)
	require.NoError(t, err)
	require.Equal(t, "ana", claims.UserID)

	bearer := http.Header{"Authorization": []string{"Bearer " + tok}}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users/ana/layout", nil, bearer)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users/bob/layout", nil, bearer)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	cookie := http.Header{"Cookie": []string{sessionCookieName + "=" + tok}}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users/ana/layout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	forged, _, err := IssueToken([]byte("other"), "ana", time.Hour)
	require.NoError(t, err)
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users/ana/layout", nil, http.Header{"Authorization": []string{"Bearer " + forged}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(ServerConfig{AuthMode: "magic"}, newFakeStore())
	require.Error(t, err)
	_, err = NewServer(ServerConfig{AuthMode: "token"}, newFakeStore())
	require.Error(t, err)
	_, err = NewServer(ServerConfig{}, nil)
	require.Error(t, err)
}

func TestCardPage(t *testing.T) {
	fs := newFakeStore("ana")
	fs.rows["ana"] = []model.Section{{ID: "1", Type: "bio", Title: "About", Value: model.TextValue("<b>hi</b>")}}
	_, ts := newTestServer(t, ServerConfig{}, fs)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/users/ana/card", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, string(body), "<title>ANA</title>")
	require.Contains(t, string(body), "<h2>About</h2>")
	require.NotContains(t, string(body), "<b>hi</b>")
}

func TestLayoutStream(t *testing.T) {
	fs := newFakeStore("ana")
	srv, ts := newTestServer(t, ServerConfig{}, fs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/users/ana/layout/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				lines <- string(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	waitFor := func(substr string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		var seen strings.Builder
		for {
			select {
			case chunk, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q; got %q", substr, seen.String())
				}
				seen.WriteString(chunk)
				if strings.Contains(seen.String(), substr) {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q; got %q", substr, seen.String())
			}
		}
	}

	waitFor(`"card":[]`)
	resp2, body := doJSON(t, http.MethodPost, ts.URL+"/users/ana/sections", map[string]string{"type": "skills"}, nil)
	require.Equal(t, http.StatusCreated, resp2.StatusCode, string(body))
	waitFor(`"type":"skills"`)

	hub := srv.hubs.hubFor("ana")
	require.Equal(t, 1, hub.count())
	cancel()
	require.Eventually(t, func() bool { return hub.count() == 0 }, 5*time.Second, 10*time.Millisecond,
		"stream subscriber not removed after disconnect")
}

func TestLayout_FailedLoadIsRetriedAndNeverOverwritesRows(t *testing.T) {
	fs := newFakeStore("ana")
	fs.rows["ana"] = []model.Section{{ID: "a", Type: "bio"}, {ID: "b", Type: "skills"}}
	fs.fetchFailures = 1
	srv, ts := newTestServer(t, ServerConfig{}, fs)
	base := ts.URL + "/users/ana"

	resp, body := doJSON(t, http.MethodGet, base+"/layout", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodGet, base+"/layout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var st stateResp
	require.NoError(t, json.Unmarshal(body, &st))
	require.Len(t, st.Card, 2)
	require.Empty(t, st.Error)

	resp, body = doJSON(t, http.MethodPost, base+"/sections", map[string]string{"type": "projects"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	require.NoError(t, srv.Close(context.Background()))
	saved := fs.saved("ana")
	require.Len(t, saved, 3)
	require.Equal(t, "a", saved[0].ID)
	require.Equal(t, "b", saved[1].ID)
	require.Equal(t, "projects", saved[2].Type)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s")
	tok, _, err := IssueToken(secret, "ana", time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(secret, tok)
	require.NoError(t, err)
	require.Equal(t, "ana", claims.UserID)

	_, err = VerifyToken(secret, tok+"x")
	require.ErrorIs(t, err, ErrTokenSignature)
	_, err = VerifyToken(secret, "nodot")
	require.ErrorIs(t, err, ErrTokenFormat)

	expired, _, err := IssueToken(secret, "ana", -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(secret, expired)
	require.ErrorIs(t, err, ErrTokenExpired)
}
