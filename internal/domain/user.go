package domain

// User is a registered account. HashedPassword never leaves the server.
type User struct {
	ID             int64  `json:"-"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	HashedPassword string `json:"-"`
	Disabled       bool   `json:"disabled"`
}

// SavedLocation is a location bookmarked by a user.
type SavedLocation struct {
	ID       int64
	UserID   int64
	Location string
}
