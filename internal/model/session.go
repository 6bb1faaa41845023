package model

// Session is the authenticated identity attached to a request.
type Session struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

func NewSession(u *User) *Session {
	return &Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (s *Session) Can(p Permission) bool {
	return s != nil && s.Role.Can(p)
}
