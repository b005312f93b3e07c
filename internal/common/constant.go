package common

// AuthHeaderName is the HTTP header used to carry the bearer token on
// outbound requests.
const AuthHeaderName = "Authorization"

// Storage keys for the persisted session. Both are written together on
// session establishment and removed together on session end.
const (
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
)
