package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/resp"
)

// authedRequest builds a JSON request carrying an authenticated payload, the
// way RequireAuth leaves it for downstream handlers.
func authedRequest(method, target, body, userID string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	payload := &jwt.Payload{UserID: userID}
	return r.WithContext(context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, payload))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) resp.JSONResponse {
	t.Helper()
	var out resp.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// The validation paths below reject before any storage access, so a nil store
// in AppDeps is safe.

func TestRegisterValidation(t *testing.T) {
	deps := &AppDeps{}

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"bad email", `{"email":"not-an-email","password":"secret1","displayName":"Alice"}`, errs.ErrInvalidEmail},
		{"short password", `{"email":"a@example.com","password":"12345","displayName":"Alice"}`, errs.ErrInvalidPassword},
		{"short display name", `{"email":"a@example.com","password":"secret1","displayName":"A"}`, errs.ErrInvalidDisplayName},
		{"bad avatar scheme", `{"email":"a@example.com","password":"secret1","displayName":"Alice","avatar":"ftp://x"}`, errs.ErrInvalidParams},
		{"unknown field", `{"email":"a@example.com","password":"secret1","displayName":"Alice","admin":true}`, errs.ErrInvalidJSONFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			HandleRegister(deps)(w, r)

			assert.Equal(t, tc.wantCode, decodeResponse(t, w).Code)
		})
	}
}

func TestRegisterRejectsWrongContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("email=a@example.com"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	HandleRegister(&AppDeps{})(w, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, errs.ErrUnsupportedMediaType, decodeResponse(t, w).Code)
}

func TestCreateRoomValidation(t *testing.T) {
	deps := &AppDeps{}

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"invalid type", `{"name":"Lounge","type":"broadcast","participants":["u2"]}`, errs.ErrRoomTypeInvalid},
		{"empty name", `{"name":"","type":"group","participants":["u2"]}`, errs.ErrInvalidParams},
		{"no participants", `{"name":"Lounge","type":"group","participants":[]}`, errs.ErrInvalidParams},
		{"personal too many", `{"name":"Pair","type":"personal","participants":["u2","u3"]}`, errs.ErrPersonalRoomParticipants},
		{"personal only self", `{"name":"Pair","type":"personal","participants":["u1"]}`, errs.ErrPersonalRoomParticipants},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := authedRequest(http.MethodPost, "/api/rooms", tc.body, "u1")
			w := httptest.NewRecorder()

			HandleCreateRoom(deps)(w, r)

			assert.Equal(t, tc.wantCode, decodeResponse(t, w).Code)
		})
	}
}

func TestCreateRoomDeduplicatesCreator(t *testing.T) {
	// Repeated ids and the creator's own id collapse to one participant, which
	// is not a valid pair.
	r := authedRequest(http.MethodPost, "/api/rooms",
		`{"name":"Pair","type":"personal","participants":["u1","u1","u1"]}`, "u1")
	w := httptest.NewRecorder()

	HandleCreateRoom(&AppDeps{})(w, r)

	assert.Equal(t, errs.ErrPersonalRoomParticipants, decodeResponse(t, w).Code)
}

func TestRoomMessagesPaginationValidation(t *testing.T) {
	deps := &AppDeps{}

	for _, q := range []string{"page=0", "page=abc", "limit=0", "limit=101", "limit=-5"} {
		t.Run(q, func(t *testing.T) {
			r := authedRequest(http.MethodGet, "/api/rooms/r1/messages?"+q, "", "u1")
			w := httptest.NewRecorder()

			HandleRoomMessages(deps)(w, r)

			assert.Equal(t, errs.ErrInvalidParams, decodeResponse(t, w).Code)
		})
	}
}

func TestPresignUploadValidation(t *testing.T) {
	deps := &AppDeps{}

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"missing file name", `{"scope":"avatar","mimeType":"image/png","fileSize":100}`, errs.ErrInvalidParams},
		{"bad mime type", `{"scope":"avatar","fileName":"x.exe","mimeType":"application/x-msdownload","fileSize":100}`, errs.ErrFileTypeInvalid},
		{"zero size", `{"scope":"avatar","fileName":"x.png","mimeType":"image/png","fileSize":0}`, errs.ErrFileSizeTooLarge},
		{"oversize", `{"scope":"avatar","fileName":"x.png","mimeType":"image/png","fileSize":99999999}`, errs.ErrFileSizeTooLarge},
		{"unknown scope", `{"scope":"public","fileName":"x.png","mimeType":"image/png","fileSize":100}`, errs.ErrInvalidParams},
		{"room scope without room", `{"scope":"room","fileName":"x.png","mimeType":"image/png","fileSize":100}`, errs.ErrInvalidParams},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := authedRequest(http.MethodPost, "/api/files/presign-upload", tc.body, "u1")
			w := httptest.NewRecorder()

			HandlePresignUpload(deps)(w, r)

			assert.Equal(t, tc.wantCode, decodeResponse(t, w).Code)
		})
	}
}

func TestPresignDownloadKeyValidation(t *testing.T) {
	deps := &AppDeps{}

	for _, key := range []string{"", "avatars", "secrets/u1/x.png", "avatars/u1/../../x.png"} {
		t.Run("key="+key, func(t *testing.T) {
			r := authedRequest(http.MethodGet, "/api/files/presign-download?key="+key, "", "u1")
			w := httptest.NewRecorder()

			HandlePresignDownload(deps)(w, r)

			assert.Equal(t, errs.ErrFileKeyInvalid, decodeResponse(t, w).Code)
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report-v2.pdf", sanitizeFileName("report-v2.pdf"))
	assert.Equal(t, "x.png", sanitizeFileName("../../x.png"))
	assert.Equal(t, "my_file.txt", sanitizeFileName("my file.txt"))
	assert.Equal(t, "x.png", sanitizeFileName("..\\..\\x.png"))
}
