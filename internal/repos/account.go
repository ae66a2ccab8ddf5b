package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

type AccountRepo interface {
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error)
	// GetOrCreate resolves an email to an account key, creating the account
	// when it does not exist. Safe against a concurrent run creating the same
	// email first: the conflicting insert is a no-op and the existing row is
	// returned.
	GetOrCreate(ctx context.Context, tx *gorm.DB, account *types.Account) (uuid.UUID, error)
	UpdateDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	EmailMapBySchool(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) (map[string]uuid.UUID, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	return &accountRepo{db: db, log: baseLog.With("repo", "AccountRepo")}
}

func (r *accountRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return nil, nil
	}
	var row types.Account
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *accountRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, account *types.Account) (uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if account == nil || account.Email == "" {
		return uuid.Nil, nil
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.KnackAttributes == nil {
		account.KnackAttributes = datatypes.JSON([]byte(`{}`))
	}

	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(account).Error
	if err != nil {
		return uuid.Nil, err
	}

	// The insert is a no-op on conflict, so re-read to get the winning key.
	existing, err := r.GetByEmail(ctx, transaction, account.Email)
	if err != nil {
		return uuid.Nil, err
	}
	if existing == nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return existing.ID, nil
}

func (r *accountRepo) UpdateDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Account{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *accountRepo) EmailMapBySchool(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) (map[string]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.Account
	err := transaction.WithContext(ctx).
		Select("id", "email").
		Where("school_id = ?", schoolID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		result[row.Email] = row.ID
	}
	return result, nil
}
