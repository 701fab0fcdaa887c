package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal/auth"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*auth.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *Repository) first(query *gorm.DB) (*auth.Account, error) {
	var row employeeDatamodel.Employee
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Account{
		ID:           row.ID,
		Email:        row.Email,
		Role:         row.Role,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}
