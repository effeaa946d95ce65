package gormaccountrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/seatwise/go-seat-server/accounts"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AccountRecord is the persisted row for an account, one per login.
type AccountRecord struct {
	ID                 string `gorm:"primaryKey;size:36"`
	Login              string `gorm:"size:128;uniqueIndex;not null"`
	CredentialHash     string `gorm:"size:255;not null"`
	SubscriptionExpiry *time.Time
	BoundDeviceID      *string `gorm:"size:128"`
	SessionActive      bool    `gorm:"not null"`
	IsAdmin            bool    `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (AccountRecord) TableName() string { return "accounts" }

// Open creates a SQLite database connection with basic tuning. The DSN opens
// every transaction as an immediate writer with a busy timeout, so concurrent
// Update transactions queue at BEGIN instead of failing mid-write with
// "database is locked".
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "[gormaccountrepo.Open] create db dir")
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[gormaccountrepo.Open] open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "[gormaccountrepo.Open] get sql db")
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// AutoMigrate runs schema migrations for the account table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&AccountRecord{}); err != nil {
		return errors.Wrap(err, "[gormaccountrepo.AutoMigrate] auto migrate")
	}
	return nil
}

var _ accounts.Store = (*GormAccountRepo)(nil)

// GormAccountRepo is the durable account store.
type GormAccountRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormAccountRepo {
	return &GormAccountRepo{db: db}
}

func (ar *GormAccountRepo) Create(account *accounts.Account) error {
	record := toRecord(account)
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	err := ar.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&AccountRecord{}).
			Where("login = ?", account.Login).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "[GormAccountRepo.Create] count login")
		}
		if count > 0 {
			return accounts.ErrLoginTaken
		}
		if err := tx.Create(record).Error; err != nil {
			return errors.Wrap(err, "[GormAccountRepo.Create] insert account")
		}
		return nil
	})
	if err != nil {
		return err
	}

	account.ID = record.ID
	account.CreatedAt = record.CreatedAt
	return nil
}

func (ar *GormAccountRepo) Get(login string) (*accounts.Account, error) {
	var record AccountRecord
	if err := ar.db.Where("login = ?", login).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accounts.ErrNotFound
		}
		return nil, errors.Wrap(err, "[GormAccountRepo.Get] query account")
	}
	return toAccount(&record), nil
}

// Update runs the read, the mutator and the write in one immediate
// transaction. The write lock taken at BEGIN is the per-login critical
// section: a concurrent Update for the same login waits, then reads the
// committed state. A mutator error rolls back with the stored row unchanged.
func (ar *GormAccountRepo) Update(login string, mutate accounts.Mutator) (*accounts.Account, error) {
	var updated *accounts.Account

	err := ar.db.Transaction(func(tx *gorm.DB) error {
		var record AccountRecord
		if err := tx.Where("login = ?", login).
			First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return accounts.ErrNotFound
			}
			return errors.Wrap(err, "[GormAccountRepo.Update] query account")
		}

		account := toAccount(&record)
		if err := mutate(account); err != nil {
			return err
		}

		next := toRecord(account)
		next.ID = record.ID
		next.CreatedAt = record.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			return errors.Wrap(err, "[GormAccountRepo.Update] save account")
		}

		updated = toAccount(next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (ar *GormAccountRepo) List() ([]*accounts.Account, error) {
	var records []AccountRecord
	if err := ar.db.Order("login").Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "[GormAccountRepo.List] query accounts")
	}

	list := make([]*accounts.Account, 0, len(records))
	for i := range records {
		list = append(list, toAccount(&records[i]))
	}
	return list, nil
}

func toRecord(account *accounts.Account) *AccountRecord {
	return &AccountRecord{
		ID:                 account.ID,
		Login:              account.Login,
		CredentialHash:     account.CredentialHash,
		SubscriptionExpiry: account.SubscriptionExpiry,
		BoundDeviceID:      account.BoundDeviceID,
		SessionActive:      account.SessionActive,
		IsAdmin:            account.IsAdmin,
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	}
}

func toAccount(record *AccountRecord) *accounts.Account {
	account := &accounts.Account{
		ID:                 record.ID,
		Login:              record.Login,
		CredentialHash:     record.CredentialHash,
		SubscriptionExpiry: record.SubscriptionExpiry,
		BoundDeviceID:      record.BoundDeviceID,
		SessionActive:      record.SessionActive,
		IsAdmin:            record.IsAdmin,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	return account.Clone()
}
