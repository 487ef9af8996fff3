package model

// AuthUser is the in-memory representation of an authenticated principal,
// populated at token validation time.
type AuthUser struct {
	UserID      string
	Email       string
	DisplayName string
}

func NewAuthUser(userID, email, displayName string) *AuthUser {
	return &AuthUser{
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
	}
}
