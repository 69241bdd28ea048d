package types

import (
	"time"

	"github.com/uptrace/bun"
)

// NotificationType identifies the kind of a notification row.
type NotificationType string

const (
	NotificationPostLike       NotificationType = "post_like"
	NotificationPostComment    NotificationType = "post_comment"
	NotificationFollow         NotificationType = "follow"
	NotificationAICommentReady NotificationType = "ai_comment_ready"
	NotificationTreatBonus     NotificationType = "treat_bonus"
)

// Notification is a per-recipient row produced by event fan-out.
// The payload carries the minimal identifiers needed to re-fetch display data.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID          string           `bun:"id,pk,type:uuid"       json:"id"`
	RecipientID int64            `bun:"recipient_id,notnull"  json:"recipientId"`
	Type        NotificationType `bun:"type,notnull"          json:"type"`
	Payload     map[string]any   `bun:"payload,type:jsonb"    json:"payload"`
	CreatedAt   time.Time        `bun:"created_at,notnull"    json:"createdAt"`
	ReadAt      *time.Time       `bun:"read_at"               json:"readAt,omitempty"`
}

// Event is a domain event that fans out into zero or more notification rows.
// The interface is sealed so the fan-out switch stays exhaustive: adding a
// variant means touching the fan-out site, checked at compile time.
type Event interface {
	Kind() NotificationType
	isEvent()
}

// PostLikeEvent fires when an actor likes a post.
type PostLikeEvent struct {
	PostID  int64
	ActorID int64
}

func (PostLikeEvent) Kind() NotificationType { return NotificationPostLike }
func (PostLikeEvent) isEvent()               {}

// PostCommentEvent fires when an actor comments on a post.
type PostCommentEvent struct {
	PostID    int64
	CommentID int64
	ActorID   int64
}

func (PostCommentEvent) Kind() NotificationType { return NotificationPostComment }
func (PostCommentEvent) isEvent()               {}

// FollowEvent fires when an actor follows a target user.
type FollowEvent struct {
	ActorID  int64
	TargetID int64
}

func (FollowEvent) Kind() NotificationType { return NotificationFollow }
func (FollowEvent) isEvent()               {}

// AICommentReadyEvent fires when AI commentary finishes for a post.
type AICommentReadyEvent struct {
	PostID    int64
	CommentID int64
}

func (AICommentReadyEvent) Kind() NotificationType { return NotificationAICommentReady }
func (AICommentReadyEvent) isEvent()               {}

// TreatBonusEvent fires when a spin produces bonus minutes.
type TreatBonusEvent struct {
	UserID       int64
	SpinID       int64
	BonusMinutes int
}

func (TreatBonusEvent) Kind() NotificationType { return NotificationTreatBonus }
func (TreatBonusEvent) isEvent()               {}
