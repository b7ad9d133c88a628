package models

// User is the identity-provider-owned account record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a successful login. The access token is handed
// back to the caller and is not stored server-side.
type Session struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
