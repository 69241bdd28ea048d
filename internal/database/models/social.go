package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sweatloop/treatwheel/internal/database/dbretry"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/sweatloop/treatwheel/pkg/utils"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// userCacheTTL bounds how stale an actor's display data may be inside a
// fan-out batch. Display names change rarely; payload resolution reads them
// repeatedly.
const userCacheTTL = time.Minute

// SocialModel reads the minimal user and post state needed to build
// notification payloads. These tables are owned by the outer application.
type SocialModel struct {
	db        *bun.DB
	userCache *utils.TTLMap[int64, *types.User]
	logger    *zap.Logger
}

// NewSocial creates a new social model.
func NewSocial(db *bun.DB, logger *zap.Logger) *SocialModel {
	return &SocialModel{
		db:        db,
		userCache: utils.NewTTLMap[int64, *types.User](userCacheTTL),
		logger:    logger.Named("db_social"),
	}
}

// GetUser retrieves a user by ID, serving recent lookups from a short-lived
// in-process cache. Returns nil without error when the user does not exist.
func (r *SocialModel) GetUser(ctx context.Context, id int64) (*types.User, error) {
	if cached, ok := r.userCache.Get(id); ok {
		return cached, nil
	}

	user, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User

		err := r.db.NewSelect().
			Model(&user).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		return &user, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	r.userCache.Set(id, user)

	return user, nil
}

// GetPost retrieves a post by ID.
// Returns nil without error when the post does not exist.
func (r *SocialModel) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	post, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Post, error) {
		var post types.Post

		err := r.db.NewSelect().
			Model(&post).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		return &post, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	return post, nil
}
