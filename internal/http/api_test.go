package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"filevault/internal/repository/sqlite"
	"filevault/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	fileRepo := sqlite.NewFileRepository(db)
	require.NoError(t, userRepo.Init(t.Context()))
	require.NoError(t, fileRepo.Init(t.Context()))

	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	handler := NewHandler(
		service.NewUserService(userRepo),
		service.NewFileService(fileRepo, nil, "", ""),
		tokens,
		nil,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access)
	return resp.Access
}

func uploadFile(t *testing.T, router *gin.Engine, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginRefreshScenario(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{"username": "admin", "password": "pw1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{"username": "admin", "password": "pw2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{"username": "admin", "password": "pw2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{"username": "admin", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	rec = doJSON(t, router, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": "garbage"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// an access token is not a refresh token
	rec = doJSON(t, router, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair.Access})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilesRequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/files", "/api/dashboard", "/api/profile"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/files", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "password")
	content := []byte("file contents, byte for byte")

	rec := uploadFile(t, router, token, "notes.txt", "text/plain", content)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files?page=1&per_page=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Files []struct {
			Filename    string `json:"filename"`
			ContentType string `json:"content_type"`
		} `json:"files"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, int64(1), listing.Total)
	require.Len(t, listing.Files, 1)
	require.Equal(t, "notes.txt", listing.Files[0].Filename)
	require.Equal(t, "text/plain", listing.Files[0].ContentType)

	rec = doJSON(t, router, http.MethodGet, "/api/files/notes.txt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, content, rec.Body.Bytes())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "notes.txt")
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = doJSON(t, router, http.MethodDelete, "/api/files/notes.txt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files/notes.txt", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// deleting again is still a success
	rec = doJSON(t, router, http.MethodDelete, "/api/files/notes.txt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "bob", "password")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "not a file"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsBadPagination(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "carol", "password")

	rec := doJSON(t, router, http.MethodGet, "/api/files?page=zero", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files?per_page=-1", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilesAreOwnerScoped(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerAndLogin(t, router, "alice", "pw-alice")
	bobToken := registerAndLogin(t, router, "bob", "pw-bob")

	rec := uploadFile(t, router, aliceToken, "secret.txt", "text/plain", []byte("alice only"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files/secret.txt", bobToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// bob deleting alice's file is a no-op for alice
	rec = doJSON(t, router, http.MethodDelete, "/api/files/secret.txt", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files/secret.txt", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboard(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerAndLogin(t, router, "alice", "pw-alice")
	bobToken := registerAndLogin(t, router, "bob", "pw-bob")

	require.Equal(t, http.StatusCreated, uploadFile(t, router, aliceToken, "a.txt", "text/plain", []byte("a")).Code)
	require.Equal(t, http.StatusCreated, uploadFile(t, router, aliceToken, "b.png", "image/png", []byte("b")).Code)
	require.Equal(t, http.StatusCreated, uploadFile(t, router, bobToken, "c.txt", "text/plain", []byte("c")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash struct {
		TotalFiles    int64            `json:"total_files"`
		Breakdown     map[string]int64 `json:"file_types_breakdown"`
		UserFileCount int64            `json:"user_file_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	require.Equal(t, int64(3), dash.TotalFiles)
	require.Equal(t, int64(2), dash.UserFileCount)
	require.Equal(t, int64(2), dash.Breakdown["text/plain"])
	require.Equal(t, int64(1), dash.Breakdown["image/png"])
}

func TestProfile(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "dave", "password")

	rec := doJSON(t, router, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "dave", profile.Username)
	require.NotEmpty(t, profile.ID)
}
