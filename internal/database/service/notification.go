package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/sourcegraph/conc/pool"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"go.uber.org/zap"
)

// maxResolveConcurrency bounds payload resolution for a batch of events.
const maxResolveConcurrency = 4

// unreadKey is the cache key for a recipient's unread count.
func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// NotificationWriter is the notification-row interface the fan-out consumes.
type NotificationWriter interface {
	Insert(ctx context.Context, rows []*types.Notification) (int, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID int64, ids []string) error
}

// SocialReader reads the minimal external state needed to build payloads.
type SocialReader interface {
	GetUser(ctx context.Context, id int64) (*types.User, error)
	GetPost(ctx context.Context, id int64) (*types.Post, error)
}

// NotificationService fans domain events out into per-recipient notification
// rows and maintains the cached unread counter. The cache is an optimization
// only: correctness never depends on its presence.
type NotificationService struct {
	model    NotificationWriter
	social   SocialReader
	cache    rueidis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewNotification creates a new notification service.
// The cache client may be nil, which disables caching entirely.
func NewNotification(
	model NotificationWriter, social SocialReader,
	cache rueidis.Client, cacheTTL time.Duration, logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		model:    model,
		social:   social,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.Named("notification"),
	}
}

// Queue resolves a batch of events into notification rows, inserts them and
// invalidates the unread-count cache for every affected recipient. Events
// whose actor equals the recipient, or that reference missing entities,
// produce no rows. Returns the number of rows created.
func (s *NotificationService) Queue(ctx context.Context, events ...types.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	p := pool.NewWithResults[*types.Notification]().
		WithContext(ctx).
		WithMaxGoroutines(maxResolveConcurrency).
		WithCollectErrored()

	for _, event := range events {
		p.Go(func(ctx context.Context) (*types.Notification, error) {
			return s.resolve(ctx, event)
		})
	}

	resolved, err := p.Wait()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve notification events: %w", err)
	}

	rows := make([]*types.Notification, 0, len(resolved))
	for _, row := range resolved {
		if row != nil {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return 0, nil
	}

	created, err := s.model.Insert(ctx, rows)
	if err != nil {
		return 0, err
	}

	// Invalidate after the rows are committed, never before.
	recipients := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		recipients[row.RecipientID] = struct{}{}
	}

	for recipientID := range recipients {
		s.invalidate(ctx, recipientID)
	}

	return created, nil
}

// UnreadCount returns a recipient's unread notification count, serving the
// cached value when fresh and recomputing on miss. Cache misses and cache
// errors are treated identically.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if s.cache != nil {
		resp := s.cache.Do(ctx, s.cache.B().Get().Key(unreadKey(userID)).Build())
		if resp.Error() == nil {
			if count, err := resp.AsInt64(); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.model.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		err := s.cache.Do(ctx, s.cache.B().Set().
			Key(unreadKey(userID)).
			Value(fmt.Sprintf("%d", count)).
			Ex(s.cacheTTL).
			Build()).Error()
		if err != nil {
			s.logger.Warn("Failed to cache unread count",
				zap.Int64("userID", userID),
				zap.Error(err))
		}
	}

	return count, nil
}

// MarkRead acknowledges notifications for a recipient and invalidates
// their cached unread count.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []string) error {
	if err := s.model.MarkRead(ctx, userID, ids); err != nil {
		return err
	}

	s.invalidate(ctx, userID)

	return nil
}

// invalidate deletes a recipient's cached unread count. Deleting rather than
// updating in place avoids drift against concurrent readers; the next read
// recomputes from the authoritative store.
func (s *NotificationService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}

	err := s.cache.Do(ctx, s.cache.B().Del().Key(unreadKey(userID)).Build()).Error()
	if err != nil {
		s.logger.Warn("Failed to invalidate unread count cache",
			zap.Int64("userID", userID),
			zap.Error(err))
	}
}

// resolve builds the notification row for one event, or nil when the event
// should be dropped. The switch is exhaustive over the sealed event type.
func (s *NotificationService) resolve(ctx context.Context, event types.Event) (*types.Notification, error) {
	switch e := event.(type) {
	case types.PostLikeEvent:
		post, actor, err := s.resolvePostActor(ctx, e.PostID, e.ActorID)
		if err != nil || post == nil || actor == nil {
			return nil, err
		}

		return &types.Notification{
			RecipientID: post.AuthorID,
			Type:        e.Kind(),
			Payload: map[string]any{
				"postId":    post.ID,
				"actorId":   actor.ID,
				"actorName": actor.Name(),
				"preview":   post.Preview,
			},
		}, nil

	case types.PostCommentEvent:
		post, actor, err := s.resolvePostActor(ctx, e.PostID, e.ActorID)
		if err != nil || post == nil || actor == nil {
			return nil, err
		}

		return &types.Notification{
			RecipientID: post.AuthorID,
			Type:        e.Kind(),
			Payload: map[string]any{
				"postId":    post.ID,
				"commentId": e.CommentID,
				"actorId":   actor.ID,
				"actorName": actor.Name(),
				"preview":   post.Preview,
			},
		}, nil

	case types.FollowEvent:
		if e.ActorID == e.TargetID {
			return nil, nil
		}

		actor, err := s.social.GetUser(ctx, e.ActorID)
		if err != nil || actor == nil {
			return nil, err
		}

		return &types.Notification{
			RecipientID: e.TargetID,
			Type:        e.Kind(),
			Payload: map[string]any{
				"actorId":   actor.ID,
				"actorName": actor.Name(),
			},
		}, nil

	case types.AICommentReadyEvent:
		post, err := s.social.GetPost(ctx, e.PostID)
		if err != nil || post == nil {
			return nil, err
		}

		return &types.Notification{
			RecipientID: post.AuthorID,
			Type:        e.Kind(),
			Payload: map[string]any{
				"postId":    post.ID,
				"commentId": e.CommentID,
			},
		}, nil

	case types.TreatBonusEvent:
		return &types.Notification{
			RecipientID: e.UserID,
			Type:        e.Kind(),
			Payload: map[string]any{
				"spinId":       e.SpinID,
				"bonusMinutes": e.BonusMinutes,
			},
		}, nil

	default:
		// Unreachable: Event is sealed.
		return nil, fmt.Errorf("unknown event type %T", event)
	}
}

// resolvePostActor loads the post and the acting user, suppressing
// self-notifications. Either being missing drops the event.
func (s *NotificationService) resolvePostActor(
	ctx context.Context, postID, actorID int64,
) (*types.Post, *types.User, error) {
	post, err := s.social.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, nil, err
	}

	if post.AuthorID == actorID {
		return nil, nil, nil
	}

	actor, err := s.social.GetUser(ctx, actorID)
	if err != nil || actor == nil {
		return nil, nil, err
	}

	return post, actor, nil
}
