package types

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the minimal slice of the app's user row the engine reads
// when resolving notification payloads.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64  `bun:"id,pk"          json:"id"`
	Username    string `bun:"username"       json:"username"`
	DisplayName string `bun:"display_name"   json:"displayName"`
}

// Name returns the user's preferred display string.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}

	return u.Username
}

// Post is the minimal slice of the app's post row the engine reads
// when resolving notification payloads.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        int64     `bun:"id,pk"            json:"id"`
	AuthorID  int64     `bun:"author_id"        json:"authorId"`
	Preview   string    `bun:"preview"          json:"preview"`
	CreatedAt time.Time `bun:"created_at"       json:"createdAt"`
}
