package model

// Session is the authenticated identity of a caller. It carries the record
// store token issued at login and the user record the token belongs to.
// A nil *Session is an anonymous caller.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Session) IsValid() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}

// UserID returns the session user id or "" for anonymous callers.
func (s *Session) UserID() string {
	if !s.IsValid() {
		return ""
	}
	return s.User.ID
}
