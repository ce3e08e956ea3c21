package service

import "buildhub/internal/model"

// Actor is whoever is making a request. UserID is empty for anonymous
// visitors, who are identified by IP instead.
type Actor struct {
	UserID    string
	Email     string
	Role      string
	IP        string
	UserAgent string
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsStaff() bool {
	return a.Role == model.RoleAdmin || a.Role == model.RoleStaff
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}
