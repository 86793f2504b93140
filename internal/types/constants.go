package types

const ContextUserKey = "user"

const (
	SessionCookie = "token"
	StateCookie   = "oauth_state"
)
