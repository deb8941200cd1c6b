package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorportal/config"
	"vendorportal/logger"
	"vendorportal/lookups"
	"vendorportal/services"
	"vendorportal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine    *gin.Engine
	blobs     *storage.LocalBlobStore
	templates string
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	containers := services.Containers{Bronze: "bronze", Silver: "silver"}
	trigger, err := services.NewTrigger(config.ETLConfig{Mode: "none"}, log)
	require.NoError(t, err)

	auth := services.NewAuthService(storage.NewMemoryUserStore(), storage.NewMemorySessionStore(), "test-secret", time.Hour, true, log)
	_, err = auth.SeedUsers(context.Background(), services.DefaultUsers)
	require.NoError(t, err)

	subs := services.NewSubmissionService(blobs, storage.NewMemorySubmissionStore(), trigger, log, containers)
	ts := &testServer{engine: gin.New(), blobs: blobs, templates: t.TempDir()}
	Register(ts.engine, Deps{
		Auth:           auth,
		Submission:     subs,
		Products:       services.NewProductService(lookups.Default(), storage.NewMemoryBatchStore(), subs, t.TempDir(), log),
		Assets:         services.NewAssetService(blobs, containers.Bronze, time.Minute, log),
		Review:         services.NewReviewService(blobs, containers, time.Minute, log),
		Drafts:         services.NewDrafts(),
		Uploader:       Uploader{Folder: t.TempDir(), MaxSize: 1 << 20},
		Ring:           logger.NewRing(10),
		Log:            log,
		TemplateFolder: ts.templates,
	})
	return ts
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.json(t, http.MethodPost, "/api/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLoginFlow(t *testing.T) {
	s := newServer(t)

	w := s.json(t, http.MethodPost, "/api/login", "", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation failed", body["error"])
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "Invalid email format", details[0].(map[string]any)["info"])

	w = s.json(t, http.MethodPost, "/api/login", "", gin.H{"email": "vendor@grote.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	token := s.login(t, "vendor@grote.com", "vendor123")
	w = s.json(t, http.MethodPost, "/api/validate-session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "vendor", body["role"])
	assert.Equal(t, "Grote Lighting", body["vendor"])

	w = s.json(t, http.MethodPost, "/api/validate-session", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(t, http.MethodPost, "/api/validate-session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired session", decode(t, w)["error"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	w := s.json(t, http.MethodGet, "/api/single-product/batch", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.json(t, http.MethodGet, "/api/single-product/batch", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decode(t, w)["error"])
}

func productValues(vendor, sku string) url.Values {
	return url.Values{
		"vendor_name":                {vendor},
		"sku":                        {sku},
		"product_status":             {"Active"},
		"level_type[]":               {"Each"},
		"level_pricing_method[]":     {"net_cost"},
		"level_currency[]":           {"USD"},
		"level_net_list_price[]":     {"10"},
		"level_net_net_cost[]":       {"8"},
		"level_net_effective_date[]": {"2099-01-01"},
	}
}

func postForm(token, path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSingleProductBatch(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "admin@fgi.com", "admin123")

	w := s.do(postForm(token, "/api/single-product/add", productValues("Ride Air", "")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "SKU is required.")

	w = s.json(t, http.MethodPost, "/api/single-product/generate", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No products in batch", decode(t, w)["error"])

	w = s.do(postForm(token, "/api/single-product/add", productValues("Ride Air", "RA-1")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "Net Cost Provided", body["method_summary"])

	w = s.json(t, http.MethodGet, "/api/single-product/batch", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = s.json(t, http.MethodGet, "/api/single-product/receipt", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.json(t, http.MethodPost, "/api/single-product/generate", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.True(t, strings.HasPrefix(body["file_name"].(string), "single_products_batch_"))
	unified, err := s.blobs.List(context.Background(), "bronze", "raw/vendor=Ride Air/unified/")
	require.NoError(t, err)
	assert.Len(t, unified, 1)

	w = s.json(t, http.MethodGet, "/api/single-product/batch", token, nil)
	assert.EqualValues(t, 0, decode(t, w)["count"])
}

func TestVendorIsPinnedOnProductAdd(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "vendor@grote.com", "vendor123")

	w := s.do(postForm(token, "/api/single-product/add", productValues("Ride Air", "GL-1")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(t, http.MethodDelete, "/api/single-product/batch", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(t, http.MethodGet, "/api/single-product/batch", token, nil)
	assert.EqualValues(t, 0, decode(t, w)["count"])
}

func TestAssetEndpoints(t *testing.T) {
	s := newServer(t)
	vendorToken := s.login(t, "vendor@grote.com", "vendor123")
	adminToken := s.login(t, "admin@fgi.com", "admin123")

	w := s.json(t, http.MethodPost, "/api/get-asset-upload-sas", vendorToken, gin.H{
		"vendor": "Tetran", "submission_id": "S1", "filename": "front view.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	path := decode(t, w)["blob_path"].(string)
	assert.True(t, strings.HasPrefix(path, "raw/vendor=Grote Lighting/submission=S1/assets/"), path)
	assert.True(t, strings.HasSuffix(path, "_front_view.jpg"), path)

	w = s.json(t, http.MethodPost, "/api/get-asset-upload-sas", vendorToken, gin.H{"filename": "a.jpg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(t, http.MethodPost, "/api/check-asset-hash", vendorToken, gin.H{
		"submission_id": "S1", "file_hash": "abc", "filename": "front view.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["skip"])

	w = s.json(t, http.MethodPost, "/api/cleanup-old-assets", adminToken, gin.H{"submission_id": "S1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no_vendor_provided", decode(t, w)["status"])

	w = s.json(t, http.MethodPost, "/api/cleanup-old-assets", vendorToken, gin.H{"submission_id": "S1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cleanup_complete", decode(t, w)["status"])
}

func TestReviewEndpoints(t *testing.T) {
	s := newServer(t)
	vendorToken := s.login(t, "vendor@grote.com", "vendor123")
	adminToken := s.login(t, "admin@fgi.com", "admin123")

	w := s.json(t, http.MethodGet, "/api/submission-status", vendorToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PARAMS", decode(t, w)["status"])

	w = s.json(t, http.MethodGet, "/api/submission-status?submission_id=S1", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_VENDOR", decode(t, w)["status"])

	w = s.json(t, http.MethodGet, "/api/submission-status?submission_id=S1", vendorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decode(t, w)["status"])

	w = s.json(t, http.MethodGet, "/api/output-summary?submission_id=S1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UNKNOWN", decode(t, w)["promotion_status"])

	w = s.json(t, http.MethodGet, "/api/download-log?submission_id=S1", vendorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No log found", decode(t, w)["error"])

	w = s.json(t, http.MethodGet, "/api/log-preview?submission_id=S1", vendorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["rows"])

	require.NoError(t, s.blobs.Upload(context.Background(), "silver",
		"rejected/logs/vendor=Grote Lighting/submission=S1/err.json", strings.NewReader(`{"stage":"silver"}`)))
	w = s.json(t, http.MethodGet, "/api/download-log?submission_id=S1", vendorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "err.json")
	assert.JSONEq(t, `{"stage":"silver"}`, w.Body.String())
}

func multipartUpload(t *testing.T, token string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadNonOptiCat(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "admin@fgi.com", "admin123")

	w := s.json(t, http.MethodGet, "/api/upload/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	draft := decode(t, w)["active_submission_id"].(string)
	assert.Len(t, draft, len(services.SubmissionIDLayout))

	w = s.do(multipartUpload(t, token,
		map[string]string{"submission_type": "vendor", "vendor_type": "non-opticat", "vendor_name": "Ride Air"},
		map[string]string{"non_opticat_file": "unified.xlsx"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := decode(t, w)["submission"].(map[string]any)
	assert.Equal(t, "Ride Air", sub["vendor"])

	blobs, err := s.blobs.List(context.Background(), "bronze", "raw/vendor=Ride Air/unified/")
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	markers, err := s.blobs.List(context.Background(), "bronze", "raw/notifymarker/")
	require.NoError(t, err)
	assert.Len(t, markers, 1)

	w = s.json(t, http.MethodGet, "/api/upload/session", token, nil)
	assert.Equal(t, sub["submission_id"], decode(t, w)["submission_id"])

	w = s.json(t, http.MethodGet, "/api/submissions?vendor=Ride%20Air", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)
	assert.EqualValues(t, 1, history["count"])
	first := history["submissions"].([]any)[0].(map[string]any)
	assert.Equal(t, sub["submission_id"], first["submission_id"])
	assert.Equal(t, "non-opticat", first["vendor_type"])

	w = s.json(t, http.MethodGet, "/api/submissions?limit=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejections(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "admin@fgi.com", "admin123")

	w := s.do(multipartUpload(t, token, map[string]string{"submission_type": "other", "vendor_name": "Ride Air"}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown submission type.", decode(t, w)["error"])

	w = s.do(multipartUpload(t, token, map[string]string{"submission_type": "vendor"}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(multipartUpload(t, token,
		map[string]string{"submission_type": "vendor", "vendor_type": "opticat", "vendor_name": "Grote Lighting"},
		map[string]string{"product_file": "product.xml"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "XML and Pricing XLSX are required")

	w = s.do(multipartUpload(t, token,
		map[string]string{"submission_type": "pricing_review", "vendor_name": "Ride Air"},
		map[string]string{"approved_pricing_file": "approved.csv"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadTemplateAndHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/download-template", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, os.WriteFile(filepath.Join(s.templates, templateName), []byte("xlsx"), 0o644))
	w = s.do(httptest.NewRequest(http.MethodGet, "/download-template", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), templateName)

	w = s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamLogs(t *testing.T) {
	ring := logger.NewRing(10)
	ring.Add("[12:00:00] INFO - first")
	ring.Add("[12:00:01] INFO - second")

	r := gin.New()
	r.GET("/logs/stream", StreamLogs(ring, 5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/logs/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "data: [12:00:00] INFO - first\n\ndata: [12:00:01] INFO - second\n\n", w.Body.String())
}
