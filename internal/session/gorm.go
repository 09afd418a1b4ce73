package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps sessions in any database GORM can reach; OpenPostgresStore
// wires it to Postgres.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

type sessionRow struct {
	BrowserID   string `gorm:"primaryKey;size:64"`
	RecordID    string `gorm:"size:32;not null"`
	UserID      int64  `gorm:"not null;default:0"`
	AccessToken string `gorm:"type:text;not null"`
	Name        string `gorm:"size:255"`
	Role        string `gorm:"size:64"`
	EmployeeID  string `gorm:"size:64"`
	Initials    string `gorm:"size:8"`
	CreatedAt   time.Time
	ExpiresAt   *time.Time `gorm:"index"`
}

func (sessionRow) TableName() string { return "console_sessions" }

func OpenPostgresStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect session database: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("migrate session table: %w", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func (g *GormStore) Put(ctx context.Context, browserID string, rec Record) error {
	row := toRow(browserID, prepare(rec))
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "browser_id"}}, UpdateAll: true}).
		Create(&row).Error
}

func (g *GormStore) Get(ctx context.Context, browserID string) (Record, error) {
	var row sessionRow
	err := g.db.WithContext(ctx).First(&row, "browser_id = ?", browserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec := fromRow(row)
	if rec.Expired(g.now()) {
		_ = g.Delete(ctx, browserID)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (g *GormStore) Delete(ctx context.Context, browserID string) error {
	return g.db.WithContext(ctx).Where("browser_id = ?", browserID).Delete(&sessionRow{}).Error
}

func (g *GormStore) Sweep(ctx context.Context) (int, error) {
	result := g.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", g.now().UTC()).
		Delete(&sessionRow{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func toRow(browserID string, rec Record) sessionRow {
	row := sessionRow{
		BrowserID:   browserID,
		RecordID:    rec.ID,
		UserID:      rec.UserID,
		AccessToken: rec.AccessToken,
		Name:        rec.Name,
		Role:        rec.Role,
		EmployeeID:  rec.EmployeeID,
		Initials:    rec.Initials,
		CreatedAt:   rec.CreatedAt.UTC(),
	}
	if !rec.ExpiresAt.IsZero() {
		expires := rec.ExpiresAt.UTC()
		row.ExpiresAt = &expires
	}
	return row
}

func fromRow(row sessionRow) Record {
	rec := Record{
		ID:          row.RecordID,
		UserID:      row.UserID,
		AccessToken: row.AccessToken,
		Name:        row.Name,
		Role:        row.Role,
		EmployeeID:  row.EmployeeID,
		Initials:    row.Initials,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if row.ExpiresAt != nil {
		rec.ExpiresAt = row.ExpiresAt.UTC()
	}
	return rec
}
