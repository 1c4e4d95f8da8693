package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/lesa/internal/docservice"
	"github.com/starford/lesa/internal/render"
	"github.com/starford/lesa/internal/sse"
	"github.com/starford/lesa/internal/testutil"
)

// testEnv sets up a temp library, SQLite DB, service, and router for testing.
// authToken="" means disabled mode; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (*docservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithBroker(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvWithBroker(t *testing.T, authEnabled bool, authToken string, broker *sse.Broker) (*docservice.Service, http.Handler, *sse.Broker) {
	t.Helper()

	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)

	svc := docservice.NewService(store, db, 250)
	router := NewRouter(svc, render.New(), broker, authEnabled, authToken)
	return svc, router, broker
}

func createDocument(t *testing.T, router http.Handler, path, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"path": path, "content": content})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetDocument(t *testing.T) {
	_, router := testEnv(t, "")

	w := createDocument(t, router, "hello.md", "Intro text.\n\n# Hello\nWorld\n")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/documents/hello.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != "hello.md" {
		t.Errorf("path = %q", doc.Path)
	}
	if doc.Title != "Hello" {
		t.Errorf("title = %q, want Hello", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].ID != "introduction" || doc.Sections[1].ID != "hello" {
		t.Errorf("section ids = %q, %q", doc.Sections[0].ID, doc.Sections[1].ID)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	if w := createDocument(t, router, "dup.md", "a"); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	if w := createDocument(t, router, "dup.md", "a"); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestGetSectionByQuery(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "guide.md", "# Setup\nsteps\n\n## Details\nmore\n")

	req := httptest.NewRequest(http.MethodGet, "/documents/guide.md?section=details", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get section = %d, body = %s", w.Code, w.Body.String())
	}
	var sec map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &sec)
	if sec["title"] != "Details" {
		t.Errorf("title = %v", sec["title"])
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/guide.md?section=missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing section = %d, want 404", w.Code)
	}
}

func TestGetDocument_HTMLFormat(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "fmt.md", "# Title\nSome *emphasis* here.\n")

	req := httptest.NewRequest(http.MethodGet, "/documents/fmt.md?format=html", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get html = %d, body = %s", w.Code, w.Body.String())
	}
	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %d", len(doc.Sections))
	}
	if !strings.Contains(doc.Sections[0].Content, "<h1") || !strings.Contains(doc.Sections[0].Content, "<em>emphasis</em>") {
		t.Errorf("html content = %q", doc.Sections[0].Content)
	}
}

func TestGetDocument_InvalidFormat(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "fmt.md", "# T\n")

	req := httptest.NewRequest(http.MethodGet, "/documents/fmt.md?format=pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid format = %d, want 400", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")

	w := createDocument(t, router, "lock.md", "v1")
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	updateBody, _ := json.Marshal(map[string]string{"content": "v2"})
	req := httptest.NewRequest(http.MethodPut, "/documents/lock.md", bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Same checksum is stale now.
	req = httptest.NewRequest(http.MethodPut, "/documents/lock.md", bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "nolock.md", "v1")

	updateBody, _ := json.Marshal(map[string]string{"content": "v2"})
	req := httptest.NewRequest(http.MethodPut, "/documents/nolock.md", bytes.NewReader(updateBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "bye.md", "gone")

	req := httptest.NewRequest(http.MethodDelete, "/documents/bye.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/bye.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	_, router := testEnv(t, "")

	for _, name := range []string{"a.md", "b.md"} {
		createDocument(t, router, name, "# "+name)
	}

	req := httptest.NewRequest(http.MethodGet, "/documents?limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	docs := resp["documents"].([]any)
	if len(docs) != 2 {
		t.Errorf("len(documents) = %d, want 2", len(docs))
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "find.md", "# Findable\nuniquetoken here\n")

	req := httptest.NewRequest(http.MethodGet, "/search?q=uniquetoken", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Errorf("search results = %d, want 1", len(results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestOutlineEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "o.md", "# One\ntext\n\n## Two\nmore\n")

	req := httptest.NewRequest(http.MethodGet, "/outline", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("outline = %d", w.Code)
	}
	var resp OutlineResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Documents) != 1 || len(resp.Documents[0].Sections) != 2 {
		t.Errorf("outline = %+v", resp)
	}
}

// Reading-progress endpoint tests.

func TestReportAndGetProgress(t *testing.T) {
	_, router := testEnv(t, "")

	// 500 words at 250 wpm = two minutes of reading.
	content := "# Long\n" + strings.Repeat("word ", 499)
	createDocument(t, router, "long.md", content)

	body, _ := json.Marshal(map[string]int64{"time_spent_ms": 60_000})
	req := httptest.NewRequest(http.MethodPost, "/progress/long.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report progress = %d, body = %s", w.Code, w.Body.String())
	}
	var prog Progress
	_ = json.Unmarshal(w.Body.Bytes(), &prog)
	if prog.Percent != 50 {
		t.Errorf("percent = %d, want 50", prog.Percent)
	}

	req = httptest.NewRequest(http.MethodGet, "/progress/long.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get progress = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &prog)
	if prog.TimeSpentMs != 60_000 {
		t.Errorf("time spent = %d, want 60000", prog.TimeSpentMs)
	}
}

func TestReportProgress_UnknownDocument(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]int64{"time_spent_ms": 1000})
	req := httptest.NewRequest(http.MethodPost, "/progress/nope.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("progress unknown doc = %d, want 404", w.Code)
	}
}

func TestReportProgress_NegativeTime(t *testing.T) {
	_, router := testEnv(t, "")
	createDocument(t, router, "neg.md", "# N\ntext\n")

	body, _ := json.Marshal(map[string]int64{"time_spent_ms": -5})
	req := httptest.NewRequest(http.MethodPost, "/progress/neg.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative time = %d, want 400", w.Code)
	}
}

func TestReportProgress_PublishesEvent(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	_, router, _ := testEnvWithBroker(t, false, "", broker)

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	createDocument(t, router, "ev.md", "# E\ntext\n")
	body, _ := json.Marshal(map[string]int64{"time_spent_ms": 30_000})
	req := httptest.NewRequest(http.MethodPost, "/progress/ev.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "progress.updated") {
			t.Errorf("event = %q, want progress.updated", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for progress event")
	}
}

// Auth middleware tests.

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body, _ := json.Marshal(map[string]string{"path": "auth.md", "content": "test"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	_, router, _ := testEnvWithBroker(t, true, "secret", broker)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	_, router, _ := testEnvWithBroker(t, true, "tok", broker)

	// SSE handler writes 200 and blocks, so cancel after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// Import endpoint tests.

func importFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportDocument(t *testing.T) {
	_, router := testEnv(t, "")

	w := importFile(t, router, "guide.md", []byte("# Guide\ncontent here\n"))
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Filename != "guide.md" {
		t.Errorf("filename = %q", resp.Filename)
	}
	if resp.Document == nil || resp.Document.Title != "Guide" {
		t.Errorf("document = %+v", resp.Document)
	}

	// Imported document is readable through the normal endpoint.
	req := httptest.NewRequest(http.MethodGet, "/documents/guide.md", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get imported = %d, want 200", rec.Code)
	}
}

func TestImportDocument_RejectsNonMarkdown(t *testing.T) {
	_, router := testEnv(t, "")

	w := importFile(t, router, "image.png", []byte("binary"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("import png = %d, want 400", w.Code)
	}
}

func TestImportDocument_Duplicate(t *testing.T) {
	_, router := testEnv(t, "")

	if w := importFile(t, router, "dup.md", []byte("# A\n")); w.Code != http.StatusCreated {
		t.Fatalf("first import = %d", w.Code)
	}
	if w := importFile(t, router, "dup.md", []byte("# B\n")); w.Code != http.StatusConflict {
		t.Errorf("duplicate import = %d, want 409", w.Code)
	}
}

func TestImportDocument_MissingFileField(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}

func TestImportDocument_TraversalBlocked(t *testing.T) {
	if _, err := safeName("../escape.md"); err == nil {
		t.Error("expected traversal name to be rejected")
	}
	if _, err := safeName("sub/dir.md"); err == nil {
		t.Error("expected nested name to be rejected")
	}
}
