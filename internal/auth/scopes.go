package auth

const (
	ScopeOpenID  = "openid"
	ScopeProfile = "profile"
	ScopeEmail   = "email"
)

// AllScopes defines the full set of scopes requested during login.
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
}
