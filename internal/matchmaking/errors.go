package matchmaking

// Error is a coded matchmaking failure. Codes are stable; handlers map them
// to HTTP statuses at the boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrLobbyNotFound    = &Error{Code: "LOBBY_NOT_FOUND", Message: "Lobby not found"}
	ErrLobbyClosed      = &Error{Code: "LOBBY_CLOSED", Message: "Lobby is not open for matching"}
	ErrAlreadyInSession = &Error{Code: "ALREADY_IN_SESSION", Message: "User is already in an active or waiting session"}
	ErrSessionNotFound  = &Error{Code: "SESSION_NOT_FOUND", Message: "Session not found"}
	ErrForbidden        = &Error{Code: "FORBIDDEN", Message: "User is not a participant of this session"}
	ErrInvalidStars     = &Error{Code: "INVALID_STARS", Message: "Stars must be between 1 and 5"}
)
