package sqlite

import (
	"context"
	"time"

	"github.com/grapelabs/grape/internal/server/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, bio, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Bio, p.AvatarURL, now, now)
	return mapConflict(err)
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, bio, avatar_url, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.UserID, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}
