package repositories

import (
	"context"
	"time"

	"runlab/stride/internal/constants"
	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AthleteRepo handles the athlete row and its OAuth tokens
type AthleteRepo struct {
	db *gormlib.DB
}

func NewAthleteRepo(db *gormlib.DB) *AthleteRepo {
	return &AthleteRepo{db: db}
}

// Get returns the authenticated athlete, or nil when nobody has connected.
func (r *AthleteRepo) Get(ctx context.Context) (*gorm.Athlete, error) {
	var athlete gorm.Athlete
	err := r.db.WithContext(ctx).Order("id").First(&athlete).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &athlete, nil
}

// Save stores the athlete as returned by the authorization exchange.
func (r *AthleteRepo) Save(ctx context.Context, athlete *gorm.Athlete) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(athlete).Error
}

// UpdateTokens persists a refreshed token pair.
func (r *AthleteRepo) UpdateTokens(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&gorm.Athlete{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     access,
			"refresh_token":    refresh,
			"token_expires_at": expiresAt.Unix(),
			"updated_at":       time.Now().UTC().Format(constants.DateLayout),
		}).Error
}
