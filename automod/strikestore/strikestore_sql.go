package strikestore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStrike struct {
	UserID    string `gorm:"primaryKey"`
	Count     int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Strike counts in an SQL database (sqlite or postgres), one row per user.
type SQLStrikeStore struct {
	db *gorm.DB
}

var _ StrikeStore = (*SQLStrikeStore)(nil)

// Wraps an existing database handle, running schema migrations as needed.
func NewSQLStrikeStore(db *gorm.DB) (*SQLStrikeStore, error) {
	if err := db.AutoMigrate(&UserStrike{}); err != nil {
		return nil, err
	}
	return &SQLStrikeStore{db: db}, nil
}

func (s *SQLStrikeStore) GetStrikes(ctx context.Context, userID string) (int, error) {
	var row UserStrike
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return row.Count, nil
}

func (s *SQLStrikeStore) IncrementStrikes(ctx context.Context, userID string) (int, error) {
	var out int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		row := UserStrike{UserID: userID, Count: 1, UpdatedAt: now}
		// upsert, so the first strike doesn't race with itself
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count":      gorm.Expr("user_strikes.count + 1"),
				"updated_at": now,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		var cur UserStrike
		if err := tx.Where("user_id = ?", userID).Take(&cur).Error; err != nil {
			return err
		}
		out = cur.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return out, nil
}

// Returns the full user-to-count mapping.
func (s *SQLStrikeStore) Snapshot(ctx context.Context) (map[string]int, error) {
	var rows []UserStrike
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Count
	}
	return out, nil
}
