package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/go-chi/chi/v5"

	"classroom-backend/internal/blobstore"
)

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_UploadAndServe(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir(), "http://localhost:8080/api/v1/files")
	if err != nil {
		t.Fatal(err)
	}
	h := NewUploadHandler(store)

	rr := httptest.NewRecorder()
	h.Upload(rr, multipartRequest(t, "essay.txt", []byte("The printing press changed Europe.")))
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["url"] == "" {
		t.Fatal("Expected a url")
	}

	r := chi.NewRouter()
	r.Get("/files/*", h.Serve)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+path.Base(body["url"]), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "The printing press changed Europe." {
		t.Errorf("Unexpected file body %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/missing.txt", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestUploadHandler_RejectsUnsupportedFiles(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir(), "http://x/files")
	if err != nil {
		t.Fatal(err)
	}
	h := NewUploadHandler(store)

	rr := httptest.NewRecorder()
	h.Upload(rr, multipartRequest(t, "run.exe", []byte("MZ\x90\x00")))
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected 415, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Upload(rr, httptest.NewRequest(http.MethodPost, "/uploads", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a file, got %d", rr.Code)
	}
}
