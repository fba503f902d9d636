package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"lectern/internal/modules/hub/domain"
	hubout "lectern/internal/modules/hub/port/out"
	apperrors "lectern/internal/platform/errors"
)

type sessionModel struct {
	ID               string `gorm:"primaryKey"`
	SourceID         string `gorm:"index;not null"`
	InitialChars     int64
	CurrChars        int64
	TotalReadingTime int64
	StartTime        int64
	EndTime          *int64
	LastActiveTime   int64 `gorm:"index"`
	IsPaused         bool
	UpdatedAt        time.Time
}

func (sessionModel) TableName() string { return "hub_sessions" }

type progressModel struct {
	SourceID   string `gorm:"primaryKey"`
	Title      string
	CurrChars  int64
	TotalChars int64
	ChangedAt  int64 `gorm:"column:changed_at"`
	UpdatedAt  time.Time
}

func (progressModel) TableName() string { return "hub_progress" }

type presenceModel struct {
	User         string `gorm:"primaryKey;column:user_name"`
	ActivityType string
	ActivityName string
	SentAt       int64
	ReceivedAt   int64
}

func (presenceModel) TableName() string { return "hub_presence" }

type GormStore struct {
	db *gorm.DB
}

var _ hubout.Store = (*GormStore)(nil)

// OpenGormStore opens the hub database at path and migrates its tables.
func OpenGormStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open hub database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&sessionModel{}, &progressModel{}, &presenceModel{}); err != nil {
		return nil, fmt.Errorf("migrate hub database: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var rows []sessionModel
	if err := s.db.WithContext(ctx).Order("last_active_time DESC, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *GormStore) FindSessions(ctx context.Context, ids []string) (map[string]domain.Session, error) {
	out := map[string]domain.Session{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []sessionModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (s *GormStore) SaveSessions(ctx context.Context, sessions []domain.Session) error {
	rows := make([]sessionModel, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, sessionFromDomain(session))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) ListProgress(ctx context.Context) ([]domain.Progress, error) {
	var rows []progressModel
	if err := s.db.WithContext(ctx).Order("source_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Progress, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *GormStore) FindProgress(ctx context.Context, sourceIDs []string) (map[string]domain.Progress, error) {
	out := map[string]domain.Progress{}
	if len(sourceIDs) == 0 {
		return out, nil
	}
	var rows []progressModel
	if err := s.db.WithContext(ctx).Where("source_id IN ?", sourceIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SourceID] = row.toDomain()
	}
	return out, nil
}

func (s *GormStore) SaveProgress(ctx context.Context, progress []domain.Progress) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range progress {
			row := progressModel{
				SourceID:   p.SourceID,
				Title:      p.Title,
				CurrChars:  p.CurrChars,
				TotalChars: p.TotalChars,
				ChangedAt:  p.UpdatedAt.Unix(),
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) GetPresence(ctx context.Context, user string) (domain.Presence, error) {
	var row presenceModel
	err := s.db.WithContext(ctx).Where("user_name = ?", user).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Presence{}, fmt.Errorf("%w: no presence for %s", apperrors.ErrNotFound, user)
	}
	if err != nil {
		return domain.Presence{}, err
	}
	return domain.Presence{
		User:         row.User,
		ActivityType: row.ActivityType,
		ActivityName: row.ActivityName,
		SentAt:       time.Unix(row.SentAt, 0).UTC(),
		ReceivedAt:   time.Unix(row.ReceivedAt, 0).UTC(),
	}, nil
}

func (s *GormStore) SavePresence(ctx context.Context, presence domain.Presence) error {
	row := presenceModel{
		User:         presence.User,
		ActivityType: presence.ActivityType,
		ActivityName: presence.ActivityName,
		SentAt:       presence.SentAt.Unix(),
		ReceivedAt:   presence.ReceivedAt.Unix(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func sessionFromDomain(s domain.Session) sessionModel {
	row := sessionModel{
		ID:               s.ID,
		SourceID:         s.SourceID,
		InitialChars:     s.InitialChars,
		CurrChars:        s.CurrChars,
		TotalReadingTime: s.TotalReadingTime,
		StartTime:        s.StartTime.Unix(),
		LastActiveTime:   s.LastActiveTime.Unix(),
		IsPaused:         s.IsPaused,
	}
	if s.EndTime != nil {
		end := s.EndTime.Unix()
		row.EndTime = &end
	}
	return row
}

func (m sessionModel) toDomain() domain.Session {
	out := domain.Session{
		ID:               m.ID,
		SourceID:         m.SourceID,
		InitialChars:     m.InitialChars,
		CurrChars:        m.CurrChars,
		TotalReadingTime: m.TotalReadingTime,
		StartTime:        time.Unix(m.StartTime, 0).UTC(),
		LastActiveTime:   time.Unix(m.LastActiveTime, 0).UTC(),
		IsPaused:         m.IsPaused,
	}
	if m.EndTime != nil {
		end := time.Unix(*m.EndTime, 0).UTC()
		out.EndTime = &end
	}
	return out
}

func (m progressModel) toDomain() domain.Progress {
	return domain.Progress{
		SourceID:   m.SourceID,
		Title:      m.Title,
		CurrChars:  m.CurrChars,
		TotalChars: m.TotalChars,
		UpdatedAt:  time.Unix(m.ChangedAt, 0).UTC(),
	}
}
