package models

// Session is the authenticated identity a request acts as
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	Avatar      string
}
