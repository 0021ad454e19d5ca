package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/internal/admins"
	"github.com/andalib/andalib-backend/pkg/config"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EnsureBootstrapAdmin creates the configured admin when the admins table is
// empty. It reports whether an account was created.
func EnsureBootstrapAdmin(ctx context.Context, db txRunner, cfg config.BootstrapConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	email := admins.NormalizeEmail(cfg.AdminEmail)
	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "Administrator"
	}

	passwordHash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created := false
	err = db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := admins.NewRepository(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "count admins")
		}
		if count > 0 {
			return nil
		}
		if err := repo.Create(ctx, &models.Admin{
			Email:        email,
			PasswordHash: passwordHash,
			Name:         name,
			Role:         enums.AdminRoleAdmin,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create bootstrap admin")
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
