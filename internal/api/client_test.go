package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "raindrip/internal/errors"
	"raindrip/internal/logging"
	"raindrip/internal/models"
)

func newTestClient(t *testing.T, serverURL string, dryRun bool) *Client {
	t.Helper()
	c := New("test-token", Options{
		BaseURL:    serverURL,
		WaybackURL: serverURL + "/wayback",
		DryRun:     dryRun,
		Logger:     logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel}),
	})
	// Retry paths must not actually wait in tests.
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func TestRequestSendsAuthAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		fmt.Fprint(w, `{"user":{"_id":1,"fullName":"Test"}}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	user, err := c.GetUser(context.Background())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-Id header missing")
	}
	if name, _ := user.Get("fullName"); name != "Test" {
		t.Errorf("fullName = %v, want Test", name)
	}
}

func TestUserFieldOrderPreserved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user":{"zeta":1,"alpha":2,"mid":3}}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	user, err := c.GetUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	keys := user.Keys()
	want := []string{"zeta", "alpha", "mid"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	if _, err := c.ListTags(context.Background()); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetriesExhaustedOn429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	_, err := c.ListTags(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 504 {
		t.Errorf("Status = %d, want 504", cliErr.Status)
	}
}

func TestRetryOn5xxThenFail(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	_, err := c.ListTags(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 502 {
		t.Errorf("Status = %d, want 502", cliErr.Status)
	}
	if attempts != maxRetries {
		t.Errorf("attempts = %d, want %d", attempts, maxRetries)
	}
}

func Test4xxNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"result":false,"errorMessage":"Raindrop not found"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	_, err := c.GetRaindrop(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (4xx must not retry)", attempts)
	}

	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 404 {
		t.Errorf("Status = %d, want 404", cliErr.Status)
	}
	if !strings.Contains(cliErr.Message, "Raindrop not found") {
		t.Errorf("Message = %q, want upstream errorMessage forwarded", cliErr.Message)
	}
	if !strings.Contains(cliErr.Hint, "Verify the ID") {
		t.Errorf("Hint = %q, want the 404 hint", cliErr.Hint)
	}
}

func TestAuthErrorHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errorMessage":"Incorrect access_token"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	_, err := c.GetUser(context.Background())
	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 401 {
		t.Fatalf("Status = %d, want 401", cliErr.Status)
	}
	if !strings.Contains(cliErr.Hint, "raindrip login") {
		t.Errorf("Hint = %q, want login hint", cliErr.Hint)
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately: connections refused

	c := newTestClient(t, server.URL, false)
	_, err := c.ListTags(context.Background())
	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 503 {
		t.Errorf("Status = %d, want 503", cliErr.Status)
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	_, err := c.ListTags(context.Background())
	cliErr := errs.AsCLIError(err)
	if cliErr.Status != 502 {
		t.Errorf("Status = %d, want 502", cliErr.Status)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListTags(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", defaultRetryAfter},
		{"5", 5 * time.Second},
		{"0", 0},
		{"garbage", defaultRetryAfter},
		{"-3", defaultRetryAfter},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestScrubPayload(t *testing.T) {
	scrubbed := scrubPayload(map[string]any{
		"title":        "ok",
		"access_token": "secret",
		"apiToken":     "secret",
	})
	if _, ok := scrubbed["access_token"]; ok {
		t.Error("access_token should be scrubbed")
	}
	if _, ok := scrubbed["apiToken"]; ok {
		t.Error("apiToken should be scrubbed")
	}
	if scrubbed["title"] != "ok" {
		t.Error("non-token keys should survive")
	}
}

func TestParseResultMissingField(t *testing.T) {
	got, err := parseResult([]byte(`{}`), true)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("missing result should use the default")
	}

	got, err = parseResult([]byte(`{"result":false}`), true)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("explicit false must win over the default")
	}
}

func TestDryRunIssuesNoWrites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("write request leaked through dry-run: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, true)
	ctx := context.Background()

	// Mutations report synthetic success without touching the server.
	ok, err := c.DeleteRaindrop(ctx, 1)
	if err != nil || !ok {
		t.Errorf("dry-run delete = (%v, %v), want (true, nil)", ok, err)
	}
	if _, err := c.RenameTag(ctx, "old", "new", 0); err != nil {
		t.Errorf("dry-run rename failed: %v", err)
	}

	// Reads still execute.
	if _, err := c.ListTags(ctx); err != nil {
		t.Errorf("dry-run read failed: %v", err)
	}
}

func TestDryRunSyntheticItem(t *testing.T) {
	c := newTestClient(t, "http://unreachable.invalid", true)

	drop, err := c.CreateRaindrop(context.Background(), models.RaindropCreate{Link: "http://example.com"})
	if err != nil {
		t.Fatalf("dry-run create failed: %v", err)
	}
	if drop.Title != "Dry Run Item" {
		t.Errorf("Title = %q, want Dry Run Item", drop.Title)
	}
}

func TestSearchPagination(t *testing.T) {
	pages := map[string][]byte{}
	// Page 0 full (50 items), page 1 short.
	full := make([]map[string]any, 50)
	for i := range full {
		full[i] = map[string]any{"_id": i + 1, "link": "http://a", "title": fmt.Sprintf("item %d", i+1)}
	}
	page0, _ := json.Marshal(map[string]any{"items": full})
	page1, _ := json.Marshal(map[string]any{"items": []map[string]any{
		{"_id": 51, "link": "http://b", "title": "last"},
	}})
	pages["0"] = page0
	pages["1"] = page1

	var gotQueries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = append(gotQueries, r.URL.Query().Get("search"))
		page := r.URL.Query().Get("page")
		if body, ok := pages[page]; ok {
			_, _ = w.Write(body)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	results, err := c.Search(context.Background(), "golang", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 51 {
		t.Errorf("results = %d, want 51", len(results))
	}
	if results[50].Title != "last" {
		t.Errorf("last title = %q, want last", results[50].Title)
	}
	for _, q := range gotQueries {
		if q != "golang" {
			t.Errorf("search param = %q, want golang", q)
		}
	}
}

func TestSearchCoversFlattened(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/collections/covers/robot") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"items":[
			{"icons":[{"png":"http://icons/a.png"},{"svg":"http://icons/a.svg"}]},
			{"icons":[{"png":"http://icons/b.png"}]}
		]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	urls, err := c.SearchCovers(context.Background(), "robot")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://icons/a.png", "http://icons/b.png"}
	if len(urls) != len(want) || urls[0] != want[0] || urls[1] != want[1] {
		t.Errorf("urls = %v, want %v", urls, want)
	}
}

func TestRenameTagPayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tags/0" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"result":true}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	ok, err := c.RenameTag(context.Background(), "work", "career", 0)
	if err != nil || !ok {
		t.Fatalf("RenameTag = (%v, %v)", ok, err)
	}
	if got["replace"] != "career" {
		t.Errorf("replace = %v, want career", got["replace"])
	}
	tags, _ := got["tags"].([]any)
	if len(tags) != 1 || tags[0] != "work" {
		t.Errorf("tags = %v, want [work]", got["tags"])
	}
}

func TestCleanEmptyCollections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/clean" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"result":true,"count":4}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	count, err := c.CleanEmptyCollections(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestUploadCoverMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collection/7/cover" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("cover")
		if err != nil {
			t.Fatalf("cover part missing: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "icon.png" {
			t.Errorf("filename = %q, want icon.png", header.Filename)
		}
		fmt.Fprint(w, `{"item":{"_id":7,"title":"Art"}}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	col, err := c.UploadCover(context.Background(), 7, "/tmp/icon.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatal(err)
	}
	if col.ID != 7 || col.Title != "Art" {
		t.Errorf("collection = %+v", col)
	}
}

func TestUploadCoverDryRun(t *testing.T) {
	c := newTestClient(t, "http://unreachable.invalid", true)
	col, err := c.UploadCover(context.Background(), 3, "icon.png", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if col.ID != 3 || col.Title != "Dry Run Icon" {
		t.Errorf("collection = %+v, want dry-run placeholder", col)
	}
}

func TestCheckWayback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wayback" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("url") != "http://example.com" {
			t.Errorf("url param = %q", r.URL.Query().Get("url"))
		}
		fmt.Fprint(w, `{"archived_snapshots":{"closest":{"url":"http://web.archive.org/web/1/http://example.com"}}}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	got := c.CheckWayback(context.Background(), "http://example.com")
	if got != "http://web.archive.org/web/1/http://example.com" {
		t.Errorf("snapshot = %q", got)
	}
}

func TestCheckWaybackDegradesQuietly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, false)
	if got := c.CheckWayback(context.Background(), "http://example.com"); got != "" {
		t.Errorf("snapshot = %q, want empty on failure", got)
	}
}
