package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"parley/internal/app/store"
	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/req"
	"parley/internal/pkg/resp"
)

const (
	presignTTL  = 15 * time.Minute
	maxFileSize = 20 << 20 // 20 MB
)

// allowedMimeTypes lists the MIME types accepted for upload.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/zip":    {},
	"video/mp4":          {},
	"audio/mpeg":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

type PresignUploadInput struct {
	Scope    string `json:"scope"`            // "avatar" or "room"
	RoomID   string `json:"roomId,omitempty"` // required when scope is "room"
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// sanitizeFileName keeps the base name only and strips characters that are
// awkward in object keys.
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// HandlePresignUpload issues a presigned PUT URL. Avatar uploads are keyed
// under the caller's own prefix; room uploads require the caller to be a
// participant of the target room.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FileName == "" || sanitizeFileName(input.FileName) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if _, ok := allowedMimeTypes[input.MimeType]; !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}
		if input.FileSize <= 0 || input.FileSize > maxFileSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
			return
		}

		var key string
		switch input.Scope {
		case "avatar":
			key = fmt.Sprintf("avatars/%s/%s-%s", payload.UserID, uuid.NewString(), sanitizeFileName(input.FileName))
		case "room":
			if input.RoomID == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			if _, err := deps.Store.RoomForParticipant(r.Context(), input.RoomID, payload.UserID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
					return
				}
				logx.Error(err, "Failed to check room access for upload", "room_id", input.RoomID)
				resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
				return
			}
			key = fmt.Sprintf("rooms/%s/%s-%s", input.RoomID, uuid.NewString(), sanitizeFileName(input.FileName))
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.Files.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignTTL)
		if err != nil {
			logx.Error(err, "Failed to presign upload", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": url,
			"key":       key,
			"expiresIn": int(presignTTL.Seconds()),
		})
	}
}

// HandlePresignDownload issues a presigned GET URL for a stored object. Keys
// under avatars/ are readable by any authenticated user; keys under rooms/
// require room membership.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		key := r.URL.Query().Get("key")
		parts := strings.Split(key, "/")
		if len(parts) < 3 || strings.Contains(key, "..") {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileKeyInvalid))
			return
		}

		switch parts[0] {
		case "avatars":
			// Avatars are visible to every signed-in user.
		case "rooms":
			roomID := parts[1]
			if _, err := deps.Store.RoomForParticipant(r.Context(), roomID, payload.UserID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
					return
				}
				logx.Error(err, "Failed to check room access for download", "room_id", roomID)
				resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
				return
			}
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrFileKeyInvalid))
			return
		}

		url, err := deps.Files.PresignDownload(r.Context(), key, presignTTL)
		if err != nil {
			logx.Error(err, "Failed to presign download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": url,
			"expiresIn":   int(presignTTL.Seconds()),
		})
	}
}
