/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
// A zero Status defaults to 200 in NewError; explicit statuses are set where the REST surface
// needs a non-200 answer.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Message Business Logic Errors
	ErrRoomTypeInvalid:          {Code: ErrRoomTypeInvalid, Message: "Invalid room type.", Status: http.StatusBadRequest},
	ErrRoomNotFound:             {Code: ErrRoomNotFound, Message: "Room not found or access denied", Status: http.StatusNotFound},
	ErrRoomAccessDenied:         {Code: ErrRoomAccessDenied, Message: "Room not found or access denied", Status: http.StatusForbidden},
	ErrNotRoomCreator:           {Code: ErrNotRoomCreator, Message: "Only the room creator can do that.", Status: http.StatusForbidden},
	ErrPersonalRoomParticipants: {Code: ErrPersonalRoomParticipants, Message: "Personal rooms must have exactly 2 participants", Status: http.StatusBadRequest},
	ErrPersonalRoomExists:       {Code: ErrPersonalRoomExists, Message: "Personal room already exists between these users", Status: http.StatusBadRequest},
	ErrParticipantNotFound:      {Code: ErrParticipantNotFound, Message: "One or more participants not found", Status: http.StatusBadRequest},
	ErrMessageContentEmpty:      {Code: ErrMessageContentEmpty, Message: "Message content cannot be empty", Status: http.StatusBadRequest},
	ErrMessageContentTooLong:    {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrMessageTypeInvalid:       {Code: ErrMessageTypeInvalid, Message: "Invalid message type", Status: http.StatusBadRequest},
	ErrFileKeyInvalid:           {Code: ErrFileKeyInvalid, Message: "Invalid file key.", Status: http.StatusBadRequest},
	ErrFileTypeInvalid:          {Code: ErrFileTypeInvalid, Message: "File type is not allowed.", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge:         {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "User already exists with this email", Status: http.StatusBadRequest},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email format", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be at least 6 characters", Status: http.StatusBadRequest},
	ErrInvalidDisplayName: {Code: ErrInvalidDisplayName, Message: "Display name must be between 2 and 50 characters", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailure: {Code: ErrStorageFailure, Message: "Internal server error", Status: http.StatusInternalServerError},
}
