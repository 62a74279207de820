package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdir/orgimport/internal/config"
	"github.com/staffdir/orgimport/internal/org"
	"github.com/staffdir/orgimport/internal/orgimport"
	"github.com/staffdir/orgimport/internal/orgtest"
)

const importHeader = "full_name,tab_number,email,phone,department,department_name,position,manager_tab_number\n"

func newTestServer(t *testing.T) (*Server, *orgtest.MemStore) {
	t.Helper()

	store := orgtest.NewMemStore()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       30 * time.Second,
		},
	}
	importer := orgimport.NewImporter(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(cfg, importer, org.NewService(store)), store
}

func uploadRequest(t *testing.T, body string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", "staff.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/org/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func doImport(t *testing.T, srv *Server, body string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, body, fields))
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestImportEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	body := importHeader +
		"Alice Smith,T001,alice@example.com,5550100001,ROOT,Head Office,CEO,\n" +
		"Bob Jones,T002,bob@example.com,5550100002,ROOT.1,Engineering,Engineer,T001\n"
	rec := doImport(t, srv, body, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result orgimport.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 2, store.CountEmployees())
	assert.Equal(t, 2, store.CountDepartments())
}

func TestImportMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("mode", "merge"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/org/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportUnknownMode(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doImport(t, srv, importHeader, map[string]string{"mode": "upsert"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportStructuralErrorIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doImport(t, srv, "no,usable,header\n1,2,3\n", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "IN001", resp.Code)
}

func TestDepartmentTreeAndPath(t *testing.T) {
	srv, _ := newTestServer(t)

	body := importHeader +
		"Alice Smith,T001,alice@example.com,5550100001,ROOT.1.2,Platform,Engineer,\n"
	require.Equal(t, http.StatusOK, doImport(t, srv, body, nil).Code)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/departments/tree", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var tree []*org.TreeNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "ROOT", tree[0].Department.Code.String())
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)

	leaf := tree[0].Children[0].Children[0].Department

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/departments/"+leaf.ID.String()+"/path", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var path []*org.Department
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &path))
	require.Len(t, path, 3)
	assert.Equal(t, "ROOT", path[0].Code.String())
	assert.Equal(t, "ROOT.1.2", path[2].Code.String())
}

func TestDepartmentPathBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/departments/not-a-uuid/path", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDepartment(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	code, err := org.NewDepartmentCode("HQ")
	require.NoError(t, err)
	leaf := org.NewDepartment(code, "Headquarters", nil)
	require.NoError(t, store.Departments().Save(ctx, leaf))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/org/departments/"+leaf.ID.String(), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Second delete: already gone.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/org/departments/"+leaf.ID.String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDepartmentWithEmployeesConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	body := importHeader +
		"Alice Smith,T001,alice@example.com,5550100001,HQ,Head Office,CEO,\n"
	require.Equal(t, http.StatusOK, doImport(t, srv, body, nil).Code)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/departments/tree", nil))
	var tree []*org.TreeNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree, 1)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/org/departments/"+tree[0].Department.ID.String(), nil))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSearchEmployees(t *testing.T) {
	srv, _ := newTestServer(t)

	body := importHeader +
		"Alice Smith,T001,alice@example.com,5550100001,HQ,Head Office,CEO,\n" +
		"Bob Jones,T002,bob@example.com,5550100002,HQ,Head Office,Analyst,T001\n"
	require.Equal(t, http.StatusOK, doImport(t, srv, body, nil).Code)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/employees?query=alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var employees []*org.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &employees))
	require.Len(t, employees, 1)
	assert.Equal(t, "T001", employees[0].TabNumber.String())

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/employees", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &employees))
	assert.Len(t, employees, 2)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := importHeader +
		"Alice Smith,T001,alice@example.com,5550100001,ROOT.1,Engineering,Engineer,\n"
	require.Equal(t, http.StatusOK, doImport(t, srv, body, nil).Code)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/org/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats org.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalDepartments)
	assert.Equal(t, 1, stats.TotalEmployees)
	assert.Equal(t, 1, stats.TotalPositions)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
