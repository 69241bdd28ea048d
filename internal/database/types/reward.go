package types

import (
	"time"

	"github.com/uptrace/bun"
)

// RewardItem is a user-owned entry in the treat catalog.
// The engine only ever reads these.
type RewardItem struct {
	bun.BaseModel `bun:"table:reward_items,alias:ri"`

	ID          int64     `bun:"id,pk,autoincrement"     json:"id"`
	UserID      int64     `bun:"user_id,notnull"         json:"userId"`
	Name        string    `bun:"name,notnull"            json:"name"`
	Description string    `bun:"description"             json:"description"`
	Portions    []string  `bun:"portions,array"          json:"portions"`
	Enabled     bool      `bun:"enabled,notnull"         json:"enabled"`
	CreatedAt   time.Time `bun:"created_at,notnull"      json:"createdAt"`
}

// OfferedPortions returns the portions offered by this item,
// falling back to the full portion set when none are configured.
func (r *RewardItem) OfferedPortions() []string {
	if len(r.Portions) == 0 {
		return AllPortions
	}

	return r.Portions
}
