package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud/crudtest"
	"ops-backend/internal/shared/storage/object/local"
)

type fixture struct {
	router  *gin.Engine
	stores  Stores
	files   *crudtest.Store[File]
	objects *local.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	files := crudtest.NewStore(func(f *File, id int64) { f.ID = id })
	stores := Stores{
		Projects:            crudtest.NewStore(func(p *Project, id int64) { p.ID = id }),
		Geographies:         crudtest.NewStore(func(g *Geography, id int64) { g.ID = id }),
		Questions:           crudtest.NewStore(func(q *Question, id int64) { q.ID = id }),
		Answers:             crudtest.NewStore(func(a *Answer, id int64) { a.ID = id }),
		CompaniesOfInterest: crudtest.NewStore(func(c *CompanyOfInterest, id int64) { c.ID = id }),
		Files:               files,
		ClientTeams:         crudtest.NewStore(func(c *ClientTeam, id int64) { c.ID = id }),
		Pipelines:           crudtest.NewStore(func(p *Pipeline, id int64) { p.ID = id }),
		Statuses:            crudtest.NewStore(func(s *PublishedStatus, id int64) { s.ID = id }),
		Publications:        crudtest.NewStore(func(p *Publication, id int64) { p.ID = id }),
		ExpertLinks:         crudtest.NewStore(func(l *ExpertLink, id int64) { l.ID = id }),
	}
	objects := local.New(t.TempDir())
	r := gin.New()
	NewHandler(stores, objects).RegisterRoutes(r)
	return fixture{router: r, stores: stores, files: files, objects: objects}
}

func (f fixture) json(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return f.serve(t, req)
}

func (f fixture) upload(t *testing.T, method, path string, fields map[string]string, fileName, content string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file_path", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = io.WriteString(part, content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.serve(t, req)
}

func (f fixture) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var payload map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return w, payload
}

func detailsOf(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	env, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", payload)
	}
	d, _ := env["details"].(map[string]any)
	return d
}

func TestUploadDerivesTypeIgnoringClientValue(t *testing.T) {
	f := newFixture(t)

	w, payload := f.upload(t, http.MethodPost, "/project_files/",
		map[string]string{"project_id": "4", "file_type": "pdf", "file_name": "spoofed"}, "report.xlsx", "sheet data")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["file_type"] != "excel" || payload["file_name"] != "report" || payload["project_id"] != float64(4) {
		t.Fatalf("unexpected payload: %v", payload)
	}

	stored, err := f.files.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	rc, err := f.objects.Open(context.Background(), stored.Path)
	if err != nil {
		t.Fatalf("expected object stored at %q: %v", stored.Path, err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "sheet data" {
		t.Fatalf("unexpected stored content %q", data)
	}
}

func TestUploadAcceptsDotsInsideFileName(t *testing.T) {
	f := newFixture(t)

	w, payload := f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "4"}, "Q3..final.pdf", "%PDF-1.7 body")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["file_name"] != "Q3..final" || payload["file_type"] != "pdf" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	f := newFixture(t)
	w, payload := f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "1"}, "photo.png", "png")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if detailsOf(t, payload)["file_path"] != "Only PDF, Excel, or Word documents are allowed." {
		t.Fatalf("unexpected details: %v", payload)
	}
	if f.files.Len() != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestUploadRequiresFile(t *testing.T) {
	f := newFixture(t)
	w, payload := f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "1"}, "", "")
	if w.Code != http.StatusBadRequest || detailsOf(t, payload)["file_path"] != "No file was submitted." {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}

	w, payload = f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "abc"}, "a.pdf", "x")
	if w.Code != http.StatusBadRequest || detailsOf(t, payload)["project_id"] == nil {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
}

func TestReplaceAndDeleteFileRemovesObjects(t *testing.T) {
	f := newFixture(t)
	if w, _ := f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "1"}, "brief.pdf", "%PDF-1.4 v1"); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	first, _ := f.files.Get(context.Background(), 1)

	w, payload := f.upload(t, http.MethodPatch, "/project_files/1/", nil, "brief.docx", "word data")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if payload["file_type"] != "word" || payload["project_id"] != float64(1) {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, err := f.objects.Open(context.Background(), first.Path); err == nil {
		t.Fatalf("expected replaced object removed")
	}

	second, _ := f.files.Get(context.Background(), 1)
	if w, _ := f.json(t, http.MethodDelete, "/project_files/1/", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, err := f.objects.Open(context.Background(), second.Path); err == nil {
		t.Fatalf("expected object removed with its row")
	}
}

func TestPatchFileWithoutUploadKeepsDocument(t *testing.T) {
	f := newFixture(t)
	f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "1"}, "brief.pdf", "%PDF-1.4")
	before, _ := f.files.Get(context.Background(), 1)

	w, payload := f.json(t, http.MethodPatch, "/project_files/1/", `{"project_id":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if payload["project_id"] != float64(2) || payload["file_path"] != before.Path || payload["file_type"] != "pdf" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, err := f.objects.Open(context.Background(), before.Path); err != nil {
		t.Fatalf("expected object kept: %v", err)
	}
}

func TestDownloadStreamsStoredFile(t *testing.T) {
	f := newFixture(t)
	f.upload(t, http.MethodPost, "/project_files/", map[string]string{"project_id": "1"}, "brief.pdf", "%PDF-1.4 body")

	req := httptest.NewRequest(http.MethodGet, "/project_files/1/download/", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="brief.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}

	stored, _ := f.files.Get(context.Background(), 1)
	_ = f.objects.Delete(context.Background(), stored.Path)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project_files/1/download/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing object, got %d", w.Code)
	}
}

func TestProjectCreateDefaultsAndDates(t *testing.T) {
	f := newFixture(t)
	w, payload := f.json(t, http.MethodPost, "/projects/",
		`{"project_name":"Market entry","timeline_start":"2025-02-01","timeline_end":"2025-03-31","expected_calls":10}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["status"] != false || payload["completed_calls"] != float64(0) || payload["timeline_end"] != "2025-03-31" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	w, payload = f.json(t, http.MethodPost, "/projects/",
		`{"project_name":"Bad","timeline_start":"01-02-2025","timeline_end":"2025-03-31"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	d := detailsOf(t, payload)
	if d["timeline_start"] == nil || d["expected_calls"] != "This field is required." {
		t.Fatalf("unexpected details: %v", d)
	}
}

func TestProjectCallCountsFitIntegerColumns(t *testing.T) {
	f := newFixture(t)
	w, payload := f.json(t, http.MethodPost, "/projects/",
		`{"project_name":"Market entry","timeline_start":"2025-02-01","timeline_end":"2025-03-31","expected_calls":3000000000,"completed_calls":-3000000000}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	d := detailsOf(t, payload)
	if d["expected_calls"] != "Ensure this value is less than or equal to 2147483647." {
		t.Fatalf("unexpected expected_calls error: %v", d)
	}
	if d["completed_calls"] != "Ensure this value is greater than or equal to -2147483648." {
		t.Fatalf("unexpected completed_calls error: %v", d)
	}
}

func TestCompanyOfInterestDefaultsToPast(t *testing.T) {
	f := newFixture(t)
	w, payload := f.json(t, http.MethodPost, "/companies_of_interest/", `{"project_id":1,"company_name":"Pertamina"}`)
	if w.Code != http.StatusCreated || payload["is_past"] != true || payload["is_current"] != false {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
	w, payload = f.json(t, http.MethodPost, "/companies_of_interest/", `{"project_id":1,"company_name":"Telkom","is_current":true,"is_past":false}`)
	if w.Code != http.StatusCreated || payload["is_past"] != false || payload["is_current"] != true {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
}

func TestPublicationFormatsAvailability(t *testing.T) {
	f := newFixture(t)
	w, payload := f.json(t, http.MethodPost, "/project_published/",
		`{"expert_id":1,"project_id":1,"status_id":1,"expert_availability":"2025-01-01T08:00:00Z","angles":"supply chain"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["expert_availability"] != "Wednesday, 01 January 2025 at 03 PM (Jakarta time)" {
		t.Fatalf("unexpected availability %v", payload["expert_availability"])
	}

	w, payload = f.json(t, http.MethodPatch, "/project_published/1/", `{"angles":"pricing"}`)
	if w.Code != http.StatusOK || payload["expert_availability"] != "Wednesday, 01 January 2025 at 03 PM (Jakarta time)" {
		t.Fatalf("expected availability kept on patch, got %d: %v", w.Code, payload)
	}

	w, payload = f.json(t, http.MethodPost, "/project_published/", `{"expert_availability":"soon"}`)
	if w.Code != http.StatusBadRequest || detailsOf(t, payload)["expert_availability"] == nil {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
}

func TestExpertLinkRequiresBiograph(t *testing.T) {
	f := newFixture(t)
	w, payload := f.json(t, http.MethodPost, "/project_with_experts/", `{"project_id":1,"expert_id":2}`)
	if w.Code != http.StatusBadRequest || detailsOf(t, payload)["biograph"] != "This field is required." {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
}

func TestSubResourceRoutesAreMounted(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{
		"/projects/", "/projects_geography/", "/screening_question/", "/screening_answer/",
		"/companies_of_interest/", "/project_files/", "/project_client_team/", "/project_pipeline/",
		"/published_statuses/", "/project_published/", "/project_with_experts/",
	} {
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("%s: expected empty list, got %d %s", path, w.Code, w.Body.String())
		}
	}
}
