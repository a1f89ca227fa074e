package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/calorieking/backend/internal/logging"
	"github.com/calorieking/backend/internal/middleware"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/types"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

const testSecret = "test-secret"

func newSessions() *service.SessionService {
	return service.NewSessionService(testSecret, time.Hour, nil)
}

// newEngine wires the authentication middleware the way the real router does
func newEngine(sessions *service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.Authenticate(sessions, logging.Discard()))
	return engine
}

// sessionCookie issues a session cookie for a fresh principal
func sessionCookie(t *testing.T, sessions *service.SessionService, username string) (*http.Cookie, types.Principal) {
	t.Helper()
	principal := types.Principal{UserID: uuid.New(), Username: username}
	token, _, err := sessions.Issue(principal)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}, principal
}

type multipartFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path string, file *multipartFile, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func imageFile() *multipartFile {
	return &multipartFile{field: "image", filename: "meal.png", contentType: "image/png", data: pngBytes}
}
