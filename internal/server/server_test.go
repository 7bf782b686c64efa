package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/db"
	"github.com/jonathan/sketch-animator/internal/storage"
)

type fakeStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*db.Job
	order     []uuid.UUID
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[uuid.UUID]*db.Job)}
}

func (f *fakeStore) CreateJob(_ context.Context, id uuid.UUID, originalFilename, inputKey string) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Now()
	job := &db.Job{
		ID:               id,
		Status:           db.StatusPending,
		OriginalFilename: originalFilename,
		InputKey:         inputKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.jobs[id] = job
	f.order = append(f.order, id)
	return job, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id], nil
}

func (f *fakeStore) ListJobs(_ context.Context, offset, limit int) ([]db.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := len(f.order)

	jobs := make([]db.Job, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(jobs) < limit; i-- {
		jobs = append(jobs, *f.jobs[f.order[i]])
	}
	return jobs, total, nil
}

type fakeQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (f *fakeQueue) Enqueue(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

type testServer struct {
	store   *fakeStore
	blobs   *storage.MemoryStore
	queue   *fakeQueue
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store: newFakeStore(),
		blobs: storage.NewMemory(),
		queue: &fakeQueue{},
	}
	s := New(Config{Port: 0, MaxUploadBytes: 10 << 20}, ts.store, ts.blobs, ts.queue, zap.NewNop())
	ts.handler = s.withCORS(s.routes())
	return ts
}

func pngUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8))))
	return multipartBody(t, filename, img.Bytes())
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// TestHealth tests the health endpoint
func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

// TestCreateJob tests the full upload path
func TestCreateJob(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := pngUpload(t, "sketch.png")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "pending", out["status"])
	assert.Equal(t, "sketch.png", out["original_filename"])

	id, err := uuid.Parse(out["id"].(string))
	require.NoError(t, err)
	assert.True(t, ts.blobs.Has(fmt.Sprintf("uploads/%s.png", id)))
	require.Len(t, ts.queue.ids, 1)
	assert.Equal(t, id, ts.queue.ids[0])
}

// TestCreateJobRejectsNonImage tests content sniffing
func TestCreateJobRejectsNonImage(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := multipartBody(t, "notes.txt", []byte("just some text, definitely not pixels"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, ts.queue.ids)
}

// TestCreateJobRejectsOversizedUpload tests the size limit
func TestCreateJobRejectsOversizedUpload(t *testing.T) {
	ts := newTestServer(t)
	s := New(Config{Port: 0, MaxUploadBytes: 64}, ts.store, ts.blobs, ts.queue, zap.NewNop())
	handler := s.withCORS(s.routes())

	body, contentType := multipartBody(t, "big.png", make([]byte, 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// TestCreateJobMissingFile tests the absent multipart field
func TestCreateJobMissingFile(t *testing.T) {
	ts := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestCreateJobEnqueueFailure tests that dispatch trouble surfaces as 503
func TestCreateJobEnqueueFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.queue.err = errors.New("queue full")

	body, contentType := pngUpload(t, "sketch.png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	out := decodeBody(t, rec)
	assert.Contains(t, out["error"], "could not be scheduled")
	job := out["job"].(map[string]any)
	assert.Equal(t, "pending", job["status"])
}

// TestGetJob tests lookup by id
func TestGetJob(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	_, err := ts.store.CreateJob(context.Background(), id, "a.png", "uploads/a.png")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), decodeBody(t, rec)["id"])
}

// TestGetJobNotFound tests the 404 path
func TestGetJobNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestGetJobInvalidID tests malformed ids
func TestGetJobInvalidID(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestListJobsPagination tests offset/limit and ordering
func TestListJobsPagination(t *testing.T) {
	ts := newTestServer(t)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		_, err := ts.store.CreateJob(context.Background(), id, fmt.Sprintf("s%d.png", i), "k")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs?offset=0&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, float64(3), out["total"])
	jobs := out["jobs"].([]any)
	require.Len(t, jobs, 2)
	// newest first
	assert.Equal(t, ids[2].String(), jobs[0].(map[string]any)["id"])
}

// TestResultCompleted tests the presigned URL response
func TestResultCompleted(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	_, err := ts.store.CreateJob(context.Background(), id, "a.png", "uploads/a.png")
	require.NoError(t, err)

	outputKey := fmt.Sprintf("outputs/%s.mp4", id)
	require.NoError(t, ts.blobs.Put(context.Background(), outputKey, []byte("mp4"), "video/mp4"))
	ts.store.jobs[id].Status = db.StatusCompleted
	ts.store.jobs[id].OutputKey = &outputKey

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+id.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Contains(t, out["url"], outputKey)
	assert.Equal(t, float64(86400), out["expires_in_seconds"])
}

// TestResultNotCompleted tests the 409 for non-terminal and failed jobs
func TestResultNotCompleted(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	_, err := ts.store.CreateJob(context.Background(), id, "a.png", "uploads/a.png")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+id.String(), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.store.jobs[id].Status = db.StatusFailed
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+id.String(), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestResultUnknownJob tests the 404 path
func TestResultUnknownJob(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestCORSPreflight tests the OPTIONS short-circuit
func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
