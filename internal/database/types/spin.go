package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Portion is the serving size drawn with a reward.
type Portion string

const (
	PortionSmall  Portion = "small"
	PortionMedium Portion = "medium"
	PortionFull   Portion = "full"
)

// AllPortions is the default portion set for reward items that do not
// restrict their offered portions.
var AllPortions = []string{
	string(PortionSmall),
	string(PortionMedium),
	string(PortionFull),
}

// SpinRecord is one successful draw of the treat wheel. The reward's display
// fields are snapshotted at draw time so later catalog edits or deletions do
// not invalidate history. Only BonusCompleted is ever mutated after creation.
type SpinRecord struct {
	bun.BaseModel `bun:"table:spin_records,alias:sr"`

	ID                int64     `bun:"id,pk,autoincrement"          json:"id"`
	UserID            int64     `bun:"user_id,notnull"              json:"userId"`
	RewardItemID      int64     `bun:"reward_item_id,notnull"       json:"rewardItemId"`
	RewardName        string    `bun:"reward_name,notnull"          json:"rewardName"`
	RewardDescription string    `bun:"reward_description"           json:"rewardDescription"`
	Portion           Portion   `bun:"portion,notnull"              json:"portion"`
	BonusMinutes      int       `bun:"bonus_minutes,notnull"        json:"bonusMinutes"`
	BonusCompleted    bool      `bun:"bonus_completed,notnull"      json:"bonusCompleted"`
	Seed              string    `bun:"seed,notnull"                 json:"seed"`
	SpunAt            time.Time `bun:"spun_at,notnull"              json:"spunAt"`
}
