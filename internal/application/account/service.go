package account

import (
	"context"

	"papertrade-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const bcryptCost = 10

// QuoteSource looks up the current price of a ticker.
type QuoteSource interface {
	Lookup(ctx context.Context, symbol string) (domain.Quote, error)
}

// Service implements the account and ledger operations. Every mutation runs in a single
// database transaction: cash, holdings and the transaction log change together or not at all.
type Service struct {
	DB *gorm.DB
	// Quotes prices trades and must return fresh prices.
	Quotes QuoteSource
	// Lookups serves read-only quote requests and may be cached. Nil means Quotes.
	Lookups     QuoteSource
	InitialCash decimal.Decimal
}

func (s *Service) lookups() QuoteSource {
	if s.Lookups != nil {
		return s.Lookups
	}
	return s.Quotes
}

// User returns the user with the given id.
func (s *Service) User(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return findUser(s.DB.WithContext(ctx), userID)
}

// UserByUsername returns the user registered under username.
func (s *Service) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.NewError(domain.ErrUserNotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

func findUser(db *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := db.Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.NewError(domain.ErrUserNotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

// lockUser loads the user row for update inside tx.
func lockUser(tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	return findUser(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func setCash(tx *gorm.DB, u *domain.User, cash decimal.Decimal) error {
	if err := tx.Model(u).Update("cash", cash).Error; err != nil {
		return err
	}
	u.Cash = cash
	return nil
}
