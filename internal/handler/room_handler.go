/*
Package handler provides HTTP handler functions for room management and
message history.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"parley/internal/app/db"
	"parley/internal/app/store"
	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/req"
	"parley/internal/pkg/resp"
)

const (
	maxRoomNameLen    = 100
	maxDescriptionLen = 500

	defaultPageSize = 20
	maxPageSize     = 100
)

// roomResponse maps a room record to its REST shape.
func roomResponse(room store.Room) map[string]any {
	return map[string]any{
		"id":           room.ID,
		"name":         room.Name,
		"description":  room.Description,
		"type":         room.Type,
		"participants": room.Participants,
		"createdBy":    room.CreatedBy,
		"createdAt":    room.CreatedAt,
		"updatedAt":    room.UpdatedAt,
	}
}

type CreateRoomInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Type         string   `json:"type"`
	Participants []string `json:"participants"`
}

// HandleCreateRoom creates a group or personal room. The caller is always a
// participant; personal rooms must resolve to exactly two distinct users, and
// at most one personal room can exist per pair (enforced by storage, surfaced
// here as a duplicate error).
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		var input CreateRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		roomType := store.RoomType(input.Type)
		if !roomType.Valid() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomTypeInvalid))
			return
		}

		if name := utf8.RuneCountInString(input.Name); name == 0 || name > maxRoomNameLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if utf8.RuneCountInString(input.Description) > maxDescriptionLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if len(input.Participants) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		// The creator always participates; de-duplicate the final set.
		seen := map[string]struct{}{payload.UserID: {}}
		participants := []string{payload.UserID}
		for _, id := range input.Participants {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			participants = append(participants, id)
		}

		if roomType == store.RoomTypePersonal && len(participants) != 2 {
			resp.RespondError(w, r, errs.NewError(errs.ErrPersonalRoomParticipants))
			return
		}

		count, err := deps.Store.CountUsersByIDs(r.Context(), participants)
		if err != nil {
			logx.Error(err, "Failed to validate room participants")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}
		if count != len(participants) {
			resp.RespondError(w, r, errs.NewError(errs.ErrParticipantNotFound))
			return
		}

		room, err := deps.Store.CreateRoom(r.Context(), store.CreateRoomParams{
			Name:         input.Name,
			Description:  input.Description,
			Type:         roomType,
			CreatedBy:    payload.UserID,
			Participants: participants,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPersonalRoomExists))
				return
			}
			logx.Error(err, "Failed to create room")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondCreated(w, r, map[string]any{"room": roomResponse(room)})
	}
}

// HandleListRooms returns every room the caller participates in.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		rooms, err := deps.Store.ListRoomsForUser(r.Context(), payload.UserID)
		if err != nil {
			logx.Error(err, "Failed to list rooms", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		out := make([]map[string]any, 0, len(rooms))
		for _, room := range rooms {
			out = append(out, roomResponse(room))
		}
		resp.RespondSuccess(w, r, map[string]any{"rooms": out})
	}
}

// HandleGetRoom returns a single room the caller participates in.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		room, err := deps.Store.RoomWithParticipants(r.Context(), roomID, payload.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			logx.Error(err, "Failed to fetch room", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"room": roomResponse(room)})
	}
}

type UpdateRoomInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HandleUpdateRoom renames a room. Group rooms may only be changed by their creator.
func HandleUpdateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		var input UpdateRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name != nil {
			if n := utf8.RuneCountInString(*input.Name); n == 0 || n > maxRoomNameLen {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
		}
		if input.Description != nil && utf8.RuneCountInString(*input.Description) > maxDescriptionLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		room, err := deps.Store.RoomForParticipant(r.Context(), roomID, payload.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			logx.Error(err, "Failed to fetch room for update", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		if room.Type == store.RoomTypeGroup && room.CreatedBy != payload.UserID {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomCreator))
			return
		}

		updated, err := deps.Store.UpdateRoom(r.Context(), roomID, store.UpdateRoomParams{
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			logx.Error(err, "Failed to update room", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"room": roomResponse(updated)})
	}
}

// HandleDeleteRoom removes a room with its messages. Group rooms may only be
// deleted by their creator.
func HandleDeleteRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		room, err := deps.Store.RoomForParticipant(r.Context(), roomID, payload.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			logx.Error(err, "Failed to fetch room for delete", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		if room.Type == store.RoomTypeGroup && room.CreatedBy != payload.UserID {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomCreator))
			return
		}

		if err := deps.Store.DeleteRoom(r.Context(), roomID); err != nil {
			logx.Error(err, "Failed to delete room", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"message": "Room deleted successfully"})
	}
}

// HandleRoomMessages returns one page of a room's message history.
func HandleRoomMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		page := 1
		limit := defaultPageSize
		if v := r.URL.Query().Get("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			page = n
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxPageSize {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			limit = n
		}

		if _, err := deps.Store.RoomForParticipant(r.Context(), roomID, payload.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			logx.Error(err, "Failed to check room access", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		messages, total, err := deps.Store.MessagesForRoom(r.Context(), roomID, page, limit)
		if err != nil {
			logx.Error(err, "Failed to fetch messages", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		out := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			out = append(out, map[string]any{
				"id":        m.ID,
				"content":   m.Content,
				"type":      m.Type,
				"sender":    m.Sender,
				"roomId":    m.RoomID,
				"createdAt": m.CreatedAt,
			})
		}

		pages := (total + limit - 1) / limit
		resp.RespondSuccess(w, r, map[string]any{
			"messages": out,
			"pagination": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": pages,
			},
		})
	}
}
