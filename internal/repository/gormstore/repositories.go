package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

func applyRange(q *gorm.DB, column string, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		q = q.Where(column+" >= ?", start.UTC())
	}
	if !end.IsZero() {
		q = q.Where(column+" <= ?", end.UTC())
	}
	return q
}

type activityEventRepository struct {
	db *gorm.DB
}

// NewActivityEventRepository creates a GORM-backed activity event repository
func NewActivityEventRepository(db *gorm.DB) repository.ActivityEventRepository {
	return &activityEventRepository{db: db}
}

func (r *activityEventRepository) Create(ctx context.Context, event *models.ActivityEvent) (*models.ActivityEvent, error) {
	rec := newActivityEventRecord(event)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create activity event: %w", translate(err))
	}
	e := rec.toModel()
	return &e, nil
}

func (r *activityEventRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.ActivityEvent, error) {
	var recs []activityEventRecord
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	q = applyRange(q, "occurred_at", start, end)
	if err := q.Order("occurred_at asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}

	events := make([]models.ActivityEvent, 0, len(recs))
	for i := range recs {
		events = append(events, recs[i].toModel())
	}
	return events, nil
}

func (r *activityEventRepository) CountByType(ctx context.Context, userID string) (map[models.ActivityType]int, error) {
	var rows []struct {
		ActivityType string
		Count        int
	}
	err := r.db.WithContext(ctx).
		Model(&activityEventRecord{}).
		Select("activity_type, count(*) as count").
		Where("user_id = ?", userID).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count activity events: %w", err)
	}

	counts := make(map[models.ActivityType]int, len(rows))
	for _, row := range rows {
		counts[models.ActivityType(row.ActivityType)] = row.Count
	}
	return counts, nil
}

type checkInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository creates a GORM-backed check-in repository
func NewCheckInRepository(db *gorm.DB) repository.CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(ctx context.Context, checkin *models.EmotionalCheckIn) (*models.EmotionalCheckIn, error) {
	rec := newCheckInRecord(checkin)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", translate(err))
	}
	c := rec.toModel()
	return &c, nil
}

func (r *checkInRepository) GetByID(ctx context.Context, userID, id string) (*models.EmotionalCheckIn, error) {
	var rec checkInRecord
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	c := rec.toModel()
	return &c, nil
}

func (r *checkInRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.EmotionalCheckIn, error) {
	var recs []checkInRecord
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	q = applyRange(q, "created_at", start, end)
	if err := q.Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	checkins := make([]models.EmotionalCheckIn, 0, len(recs))
	for i := range recs {
		checkins = append(checkins, recs[i].toModel())
	}
	return checkins, nil
}

type streakRepository struct {
	db *gorm.DB
}

// NewStreakRepository creates a GORM-backed streak repository
func NewStreakRepository(db *gorm.DB) repository.StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Get(ctx context.Context, userID string) (*models.StreakState, error) {
	var rec streakRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *streakRepository) Save(ctx context.Context, state *models.StreakState) (*models.StreakState, error) {
	rec := newStreakRecord(state)
	expected := state.Version
	rec.Version = expected + 1
	rec.UpdatedAt = time.Now().UTC()

	db := r.db.WithContext(ctx)
	if expected == 0 {
		if err := db.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, repository.ErrVersionConflict
			}
			return nil, fmt.Errorf("failed to insert streak state: %w", err)
		}
		return rec.toModel(), nil
	}

	res := db.Model(&streakRecord{}).
		Where("user_id = ? AND version = ?", state.UserID, expected).
		Select("*").
		Updates(rec)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update streak state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrVersionConflict
	}
	return rec.toModel(), nil
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a GORM-backed achievement repository
func NewAchievementRepository(db *gorm.DB) repository.AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	var recs []achievementRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	achievements := make([]models.Achievement, 0, len(recs))
	for i := range recs {
		achievements = append(achievements, recs[i].toModel())
	}
	return achievements, nil
}

func (r *achievementRepository) Upsert(ctx context.Context, achievements []models.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}

	recs := make([]achievementRecord, 0, len(achievements))
	for _, a := range achievements {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		recs = append(recs, newAchievementRecord(a))
	}

	// An earned record keeps its earned_date and progress whatever the
	// incoming row says.
	updates := clause.AssignmentColumns([]string{"category", "points", "is_hidden", "updated_at"})
	updates = append(updates,
		clause.Assignment{
			Column: clause.Column{Name: "earned_date"},
			Value:  gorm.Expr("COALESCE(achievements.earned_date, excluded.earned_date)"),
		},
		clause.Assignment{
			Column: clause.Column{Name: "progress"},
			Value:  gorm.Expr("CASE WHEN achievements.earned_date IS NULL THEN excluded.progress ELSE achievements.progress END"),
		},
	)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
		DoUpdates: updates,
	}).Create(&recs).Error
	if err != nil {
		return fmt.Errorf("failed to upsert achievements: %w", err)
	}
	return nil
}

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a GORM-backed idempotency repository
func NewIdempotencyRepository(db *gorm.DB) repository.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Get(ctx context.Context, scope models.IdempotencyScope, notBefore time.Time) (*models.IdempotencyKey, error) {
	var rec idempotencyRecord
	err := r.db.WithContext(ctx).
		Where("key = ? AND route = ? AND user_id = ? AND created_at >= ?", scope.Key, scope.Route, scope.UserID, notBefore).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}
	return rec.toModel(), nil
}

func (r *idempotencyRepository) Store(ctx context.Context, rec *models.IdempotencyKey) error {
	row := idempotencyRecordFrom(rec)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", translate(err))
	}
	return nil
}
