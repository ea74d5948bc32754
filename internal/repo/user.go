package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ProductManager/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate key")

// pgUniqueViolation is the Postgres SQLSTATE of a unique constraint violation.
const pgUniqueViolation = "23505"

// UserRepository reads and writes accounts of the identity service.
type UserRepository interface {
	// CreateUser wraps ErrDuplicate when the login is taken.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByLogin returns gorm.ErrRecordNotFound when the login is unknown.
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository creates the gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("login = ?", login).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// SQLite reports "UNIQUE constraint failed: <table>.<column>"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
