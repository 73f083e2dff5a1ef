package routes_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"citycompass/config"
	"citycompass/models"
	"citycompass/repository"
	"citycompass/repository/repotest"
	"citycompass/routes"
	"citycompass/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	store  repository.Store
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      []byte(testSecret),
		JWTTTL:         24 * time.Hour,
		UploadDir:      t.TempDir(),
		UploadMaxBytes: 5 << 20,
		CORSOrigins:    []string{"*"},
		ListMaxLimit:   200,
		PublicPageSize: 20,
		AdminPageSize:  50,
	}
	store := repotest.NewSQLiteStore(t)
	if err := services.Seed(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	r, err := routes.NewRouter(cfg, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{t: t, store: store, router: r}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *testServer) submit(fields map[string]string, image []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			s.t.Fatal(err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			s.t.Fatal(err)
		}
		_, _ = fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		s.t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/issues", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func (s *testServer) login(code, password string) string {
	w := s.json(http.MethodPost, "/api/admin/login", "", map[string]string{"department_id": code, "password": password})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", code, w.Code, w.Body.String())
	}
	var out struct {
		Token      string                   `json:"token"`
		Department models.DepartmentSummary `json:"department"`
	}
	decode(s.t, w, &out)
	if out.Department.DepartmentID != code {
		s.t.Errorf("login returned department %+v", out.Department)
	}
	return out.Token
}

func (s *testServer) stats() models.Stats {
	w := s.json(http.MethodGet, "/api/stats", "", nil)
	if w.Code != http.StatusOK {
		s.t.Fatalf("stats: %d %s", w.Code, w.Body.String())
	}
	var st models.Stats
	decode(s.t, w, &st)
	return st
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func countOf(entries []models.StatusCount, status models.IssueStatus) int64 {
	for _, e := range entries {
		if e.Status == status {
			return e.Count
		}
	}
	return 0
}

func pothole() map[string]string {
	return map[string]string{
		"category":    "Roads & Potholes",
		"title":       "Sinkhole forming near bus stop",
		"description": "Road surface is caving in next to the stop",
		"location":    "Elm St & 2nd Ave",
		"priority":    "medium",
	}
}

func TestReportAndResolveFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.submit(pothole(), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Message string       `json:"message"`
		Issue   models.Issue `json:"issue"`
	}
	decode(t, w, &created)
	if created.Issue.Status != models.Pending || created.Issue.Priority != models.Normal {
		t.Errorf("new issue: status %q priority %q", created.Issue.Status, created.Issue.Priority)
	}
	before := s.stats()

	token := s.login("PWD001", "publicworks123")
	path := fmt.Sprintf("/api/admin/issues/%d/status", created.Issue.ID)
	w = s.json(http.MethodPut, path, token, map[string]string{"status": "in-progress", "comment": "Crew scheduled"})
	if w.Code != http.StatusOK {
		t.Fatalf("transition: %d %s", w.Code, w.Body.String())
	}
	var changed struct {
		Issue  models.Issue       `json:"issue"`
		Update models.IssueUpdate `json:"update"`
	}
	decode(t, w, &changed)
	if changed.Update.Comment != "Crew scheduled" || changed.Update.Status != models.InProgress {
		t.Errorf("update = %+v", changed.Update)
	}
	if !changed.Issue.UpdatedAt.After(created.Issue.UpdatedAt) {
		t.Errorf("updated_at %v not after %v", changed.Issue.UpdatedAt, created.Issue.UpdatedAt)
	}

	w = s.json(http.MethodGet, fmt.Sprintf("/api/issues/%d", created.Issue.ID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var got models.Issue
	decode(t, w, &got)
	if got.Status != models.InProgress {
		t.Errorf("status after transition = %q", got.Status)
	}

	after := s.stats()
	if after.TotalIssues != before.TotalIssues {
		t.Errorf("total changed: %d -> %d", before.TotalIssues, after.TotalIssues)
	}
	if d := countOf(after.ByStatus, "pending") - countOf(before.ByStatus, "pending"); d != -1 {
		t.Errorf("pending count moved by %d", d)
	}
	if d := countOf(after.ByStatus, "in-progress") - countOf(before.ByStatus, "in-progress"); d != 1 {
		t.Errorf("in-progress count moved by %d", d)
	}

	w = s.json(http.MethodGet, fmt.Sprintf("/api/admin/issues/%d/updates", created.Issue.ID), token, nil)
	var history []models.IssueUpdate
	decode(t, w, &history)
	if len(history) != 1 || history[0].DepartmentID == 0 {
		t.Errorf("history = %+v", history)
	}
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t)
	before := s.stats().TotalIssues

	for _, field := range []string{"category", "title", "description", "location"} {
		fields := pothole()
		delete(fields, field)
		if w := s.submit(fields, nil); w.Code != http.StatusBadRequest {
			t.Errorf("without %s: %d %s", field, w.Code, w.Body.String())
		}
	}
	if w := s.submit(pothole(), []byte("not really a png")); w.Code != http.StatusCreated {
		t.Fatalf("with image: %d %s", w.Code, w.Body.String())
	}
	if got := s.stats().TotalIssues; got != before+1 {
		t.Errorf("total = %d, want %d", got, before+1)
	}
}

func TestSubmitWithImage(t *testing.T) {
	s := newTestServer(t)

	w := s.submit(pothole(), []byte("png bytes"))
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Issue models.Issue `json:"issue"`
	}
	decode(t, w, &created)
	if created.Issue.ImageURL == nil || !strings.HasPrefix(*created.Issue.ImageURL, "/uploads/") {
		t.Fatalf("image_url = %v", created.Issue.ImageURL)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, *created.Issue.ImageURL, nil))
	if w.Code != http.StatusOK || w.Body.String() != "png bytes" {
		t.Errorf("serve upload: %d %q", w.Code, w.Body.String())
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	creds := services.NewCredentialStore(s.store.Departments())
	if _, err := creds.Register(context.Background(), services.Registration{
		Name: "Parks", Email: "parks@citycompass.gov", Code: "PRK004", Password: "parks1234",
		Category: "Parks", Address: "1 Park Rd", Phone: "555-1004",
	}); err != nil {
		t.Fatal(err)
	}

	var bodies []string
	for _, c := range [][2]string{{"PWD001", "wrong-password"}, {"NOPE999", "publicworks123"}, {"PRK004", "parks1234"}} {
		w := s.json(http.MethodPost, "/api/admin/login", "", map[string]string{"department_id": c[0], "password": c[1]})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d", c[0], w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}
	if bodies[0] != bodies[1] || bodies[1] != bodies[2] {
		t.Errorf("login failures distinguishable: %q", bodies)
	}

	w := s.json(http.MethodPost, "/api/admin/login", "", map[string]string{"department_id": "PWD001"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: %d", w.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login("PWD001", "publicworks123")

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 2, "department_id": "PWD001", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("another-secret"))
	noDept, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "visitor", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"valid", token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"tampered", tamper(token), http.StatusUnauthorized},
		{"foreign key", foreign, http.StatusUnauthorized},
		{"no department", noDept, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/admin/issues", "/api/admin/me"} {
				if w := s.json(http.MethodGet, path, tt.token, nil); w.Code != tt.want {
					t.Errorf("%s: status %d, want %d", path, w.Code, tt.want)
				}
			}
		})
	}

	if w := s.json(http.MethodPut, "/api/admin/issues/1/status", "", map[string]string{"status": "resolved"}); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated transition: %d", w.Code)
	}
}

func TestTransitionErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login("WTD003", "water123")

	tests := []struct {
		path string
		body map[string]string
		want int
	}{
		{"/api/admin/issues/1/status", map[string]string{"comment": "no status"}, http.StatusBadRequest},
		{"/api/admin/issues/1/status", map[string]string{"status": "closed"}, http.StatusBadRequest},
		{"/api/admin/issues/9999/status", map[string]string{"status": "resolved"}, http.StatusNotFound},
		{"/api/admin/issues/abc/status", map[string]string{"status": "resolved"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := s.json(http.MethodPut, tt.path, token, tt.body); w.Code != tt.want {
			t.Errorf("%s %v: %d, want %d (%s)", tt.path, tt.body, w.Code, tt.want, w.Body.String())
		}
	}
}

func TestListPaging(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		if w := s.submit(pothole(), nil); w.Code != http.StatusCreated {
			t.Fatal(w.Body.String())
		}
	}

	list := func(query string) []models.Issue {
		w := s.json(http.MethodGet, "/api/issues"+query, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", query, w.Code, w.Body.String())
		}
		var out []models.Issue
		decode(t, w, &out)
		return out
	}

	all := list("?status=pending")
	if len(all) != 5 {
		t.Fatalf("%d pending issues, want 5", len(all))
	}
	seen := map[uint]bool{}
	for off := 0; off < len(all); off += 2 {
		page := list(fmt.Sprintf("?status=pending&limit=2&offset=%d", off))
		for i, issue := range page {
			if issue.Status != models.Pending {
				t.Errorf("status filter leaked %q", issue.Status)
			}
			if seen[issue.ID] {
				t.Errorf("issue %d on two pages", issue.ID)
			}
			seen[issue.ID] = true
			if issue.ID != all[off+i].ID {
				t.Errorf("page at %d out of order", off)
			}
		}
	}
	if len(seen) != len(all) {
		t.Errorf("pages covered %d of %d issues", len(seen), len(all))
	}

	if got := list("?category=Water%20Supply"); len(got) != 1 {
		t.Errorf("category filter returned %d", len(got))
	}
	for _, q := range []string{"?limit=ten", "?offset=x", "?status=closed"} {
		if w := s.json(http.MethodGet, "/api/issues"+q, "", nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: %d", q, w.Code)
		}
	}
	for _, p := range []string{"/api/issues/0", "/api/issues/abc", "/api/issues/424242"} {
		if w := s.json(http.MethodGet, p, "", nil); w.Code != http.StatusNotFound {
			t.Errorf("%s: %d", p, w.Code)
		}
	}
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	if w := s.json(http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
		t.Errorf("ping: %d", w.Code)
	}
}

// tamper swaps the payload for one granting a different department while
// keeping the original signature.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"id":1,"department_id":"ADMIN001","exp":4102444800}`))
	return strings.Join(parts, ".")
}

func TestStatsGroupFieldNames(t *testing.T) {
	s := newTestServer(t)
	w := s.json(http.MethodGet, "/api/stats", "", nil)
	var raw struct {
		ByStatus   []map[string]any `json:"byStatus"`
		ByCategory []map[string]any `json:"byCategory"`
	}
	decode(t, w, &raw)
	if len(raw.ByStatus) == 0 || len(raw.ByCategory) == 0 {
		t.Fatalf("empty groups: %s", w.Body.String())
	}
	if _, ok := raw.ByStatus[0]["status"]; !ok {
		t.Errorf("byStatus row = %v, want a status field", raw.ByStatus[0])
	}
	if _, ok := raw.ByCategory[0]["category"]; !ok {
		t.Errorf("byCategory row = %v, want a category field", raw.ByCategory[0])
	}
}

func TestReopenBody(t *testing.T) {
	s := newTestServer(t)
	token := s.login("PWD001", "publicworks123")

	w := s.submit(pothole(), nil)
	var created struct {
		Issue models.Issue `json:"issue"`
	}
	decode(t, w, &created)
	base := fmt.Sprintf("/api/admin/issues/%d", created.Issue.ID)
	if w := s.json(http.MethodPut, base+"/status", token, map[string]string{"status": "resolved"}); w.Code != http.StatusOK {
		t.Fatalf("resolve: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, base+"/reopen", strings.NewReader(`{"comment":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if w := s.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, base+"/reopen", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if w := s.do(req); w.Code != http.StatusOK {
		t.Fatalf("empty body: %d %s", w.Code, w.Body.String())
	}
	if w := s.json(http.MethodPost, base+"/reopen", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("reopen of pending issue: %d", w.Code)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"department_id":`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "required") {
		t.Errorf("malformed body reported as missing fields: %s", w.Body.String())
	}
}
