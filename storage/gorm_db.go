package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vendorportal/config"
	"vendorportal/models"
	"vendorportal/utils"
)

// InitGormDB opens the GORM connection for users and submissions and migrates
// both tables.
func InitGormDB(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()+" TimeZone=UTC"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(&models.UserGorm{}, &models.SubmissionGorm{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	var row models.UserGorm
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u := row.ToUser()
	return &u, nil
}

func (s *GormUserStore) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	row := models.UserGorm{
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Vendor:       u.Vendor,
		Active:       u.Active,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = int(row.ID)
	u.CreatedAt = row.CreatedAt
	return nil
}

func (s *GormUserStore) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserGorm{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

type GormSubmissionStore struct {
	db *gorm.DB
}

func NewGormSubmissionStore(db *gorm.DB) *GormSubmissionStore {
	return &GormSubmissionStore{db: db}
}

func (s *GormSubmissionStore) RecordSubmission(ctx context.Context, sub *models.Submission) error {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	row := models.NewSubmissionGorm(*sub)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the newest submissions first. An empty vendor lists
// every vendor.
func (s *GormSubmissionStore) ListSubmissions(ctx context.Context, vendor string, limit int) ([]models.Submission, error) {
	ctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	q := s.db.WithContext(ctx).Order("created_at DESC")
	if vendor != "" {
		q = q.Where("vendor = ?", vendor)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.SubmissionGorm
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	out := make([]models.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToSubmission())
	}
	return out, nil
}
