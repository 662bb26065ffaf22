package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aagaur/studiocms/config"
	"github.com/aagaur/studiocms/media"
	"github.com/aagaur/studiocms/records"
	"github.com/aagaur/studiocms/utils"
)

const mediaBase = "http://localhost/media"

var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := utils.HashPassword("letmein")
	require.NoError(t, err)
	config.Set(config.AppConfig{
		JWTSecret:            "router-secret",
		GinMode:              "test",
		RateLimitPerMinute:   1000,
		AllowedOrigins:       []string{"*"},
		AdminUsername:        "admin",
		AdminPasswordHash:    hash,
		TokenTTLHours:        1,
		AdminMaxFailedLogins: 5,
		AdminLockoutMinutes:  15,
	})
	utils.SetRedis(nil)
	utils.LoginFailReset("192.0.2.1")

	dir := t.TempDir()
	host, err := media.NewLocalHost(dir, mediaBase)
	require.NoError(t, err)
	gw := media.NewGateway(host, media.Options{Folder: "studio"})
	store := records.NewMemoryStore()
	svc := Services{
		Projects: records.NewService(records.Projects, store, gw, nil),
		Events:   records.NewService(records.Events, store, gw, nil),
		Team:     records.NewService(records.Team, store, gw, nil),
		Interns:  records.NewService(records.Interns, store, gw, nil),
	}
	return SetupRouter(svc, media.Limits{MaxFileBytes: 1 << 20, MaxFiles: 10}, dir)
}

func do(r http.Handler, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/admin/login", "", jsonBody(t, map[string]string{"username": "admin", "password": "letmein"}), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "admin", out.Username)
	return out.Token
}

func projectForm(t *testing.T, fields map[string]string, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write(pngData)
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestBannerHealthAndNoRoute(t *testing.T) {
	r := setupTestRouter(t)

	w := do(r, http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"studio backend running"}`, w.Body.String())

	w = do(r, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40400`)
}

func TestWritesRequireAdmin(t *testing.T) {
	r := setupTestRouter(t)

	for _, path := range []string{"/api/projects", "/api/events", "/api/team", "/api/careers/interns"} {
		w := do(r, http.MethodPost, path, "", jsonBody(t, map[string]string{"title": "x"}), "application/json")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := do(r, http.MethodDelete, "/api/projects/abc", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/projects", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := setupTestRouter(t)

	w := do(r, http.MethodPost, "/api/admin/login", "", jsonBody(t, map[string]string{"username": "admin", "password": "nope"}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40110`)

	w = do(r, http.MethodPost, "/api/admin/login", "", jsonBody(t, map[string]string{"username": "admin"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginLockout(t *testing.T) {
	r := setupTestRouter(t)
	defer utils.LoginFailReset("192.0.2.1")

	bad := map[string]string{"username": "admin", "password": "nope"}
	for i := 0; i < 5; i++ {
		w := do(r, http.MethodPost, "/api/admin/login", "", jsonBody(t, bad), "application/json")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	good := map[string]string{"username": "admin", "password": "letmein"}
	w := do(r, http.MethodPost, "/api/admin/login", "", jsonBody(t, good), "application/json")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":42910`)
}

func TestLogoutRevokesToken(t *testing.T) {
	r := setupTestRouter(t)
	token := login(t, r)

	w := do(r, http.MethodGet, "/api/admin/me", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"admin"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/admin/logout", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/admin/me", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	r := setupTestRouter(t)
	token := login(t, r)

	body, ct := projectForm(t,
		map[string]string{"title": "Lake House", "category": "residential", "keyFeatures": `["timber","glass"]`},
		map[string][]string{"mainImage": {"cover.png"}, "galleryImages": {"a.png", "b.png"}},
	)
	w := do(r, http.MethodPost, "/api/projects", token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	decode(t, w, &created)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Lake House", created["title"])
	assert.Equal(t, []interface{}{"timber", "glass"}, created["keyFeatures"])
	mainURL, _ := created["mainImage"].(string)
	require.True(t, strings.HasPrefix(mainURL, mediaBase+"/studio/"), mainURL)
	gallery, _ := created["galleryImages"].([]interface{})
	assert.Len(t, gallery, 2)

	// uploaded file is served back by the local host
	w = do(r, http.MethodGet, strings.TrimPrefix(mainURL, "http://localhost"), "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngData, w.Body.Bytes())

	w = do(r, http.MethodGet, "/api/projects?category=residential", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["_id"])

	w = do(r, http.MethodGet, "/api/projects?category=commercial", "", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodPut, "/api/projects/"+id, token, jsonBody(t, map[string]string{"title": "Lake House II"}), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "Lake House II", updated["title"])
	assert.Equal(t, mainURL, updated["mainImage"])

	w = do(r, http.MethodGet, "/api/stats", "", nil, "")
	assert.JSONEq(t, `{"projects":1,"events":0,"team":0,"interns":0}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/projects/"+id, token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Project removed"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/projects/"+id, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40420`)
}

func TestCreateValidation(t *testing.T) {
	r := setupTestRouter(t)
	token := login(t, r)

	// main image is required
	w := do(r, http.MethodPost, "/api/projects", token, jsonBody(t, map[string]string{"title": "No Cover"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40020`)

	body, ct := projectForm(t,
		map[string]string{"title": "Bad JSON", "keyFeatures": `[unterminated`},
		map[string][]string{"mainImage": {"cover.png"}},
	)
	w = do(r, http.MethodPost, "/api/projects", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = projectForm(t,
		map[string]string{"title": "Stray File"},
		map[string][]string{"mainImage": {"cover.png"}, "attachment": {"extra.png"}},
	)
	w = do(r, http.MethodPost, "/api/projects", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "attachment: is not a file field")

	w = do(r, http.MethodPut, "/api/projects/missing", token, jsonBody(t, map[string]string{"title": "x"}), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCorsConfig(t *testing.T) {
	cc := corsConfig([]string{"*"})
	assert.True(t, cc.AllowAllOrigins)
	assert.False(t, cc.AllowCredentials)

	cc = corsConfig([]string{"https://studio.example"})
	assert.False(t, cc.AllowAllOrigins)
	assert.True(t, cc.AllowCredentials)
	assert.Equal(t, []string{"https://studio.example"}, cc.AllowOrigins)
}
