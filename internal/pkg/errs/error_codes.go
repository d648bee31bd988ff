/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Message Business Logic Errors
const (
	// ErrRoomTypeInvalid indicates that an invalid room type was provided during creation.
	ErrRoomTypeInvalid = 2101

	// ErrRoomNotFound indicates that the requested room does not exist or the user has no access to it.
	ErrRoomNotFound = 2102

	// ErrRoomAccessDenied indicates that the user is not a participant of the room.
	ErrRoomAccessDenied = 2103

	// ErrNotRoomCreator indicates a group-room mutation attempted by someone other than the creator.
	ErrNotRoomCreator = 2104

	// ErrPersonalRoomParticipants indicates a personal room without exactly two distinct participants.
	ErrPersonalRoomParticipants = 2105

	// ErrPersonalRoomExists indicates that a personal room already exists for the participant pair.
	ErrPersonalRoomExists = 2106

	// ErrParticipantNotFound indicates that one or more requested participants do not exist.
	ErrParticipantNotFound = 2107

	// ErrMessageContentEmpty indicates that the message content was empty after trimming.
	ErrMessageContentEmpty = 2201

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrMessageTypeInvalid indicates an unsupported message type.
	ErrMessageTypeInvalid = 2203

	// ErrFileKeyInvalid indicates a presign request for a key outside the caller's allowed prefix.
	ErrFileKeyInvalid = 2301

	// ErrFileTypeInvalid indicates a presign request for a disallowed MIME type.
	ErrFileTypeInvalid = 2302

	// ErrFileSizeTooLarge indicates a presign request exceeding the per-file size limit.
	ErrFileSizeTooLarge = 2303
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, malformed, or expired bearer token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed email/password login attempt.
	ErrInvalidCredentials = 3002

	// ErrUserAlreadyExists indicates that registration failed because the email is taken.
	ErrUserAlreadyExists = 3003

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3004

	// ErrInvalidEmail indicates that the supplied email failed validation.
	ErrInvalidEmail = 3005

	// ErrInvalidPassword indicates that the supplied password failed validation.
	ErrInvalidPassword = 3006

	// ErrInvalidDisplayName indicates that the supplied display name failed validation.
	ErrInvalidDisplayName = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailure indicates that a database or file-storage operation failed.
	ErrStorageFailure = 5001
)
