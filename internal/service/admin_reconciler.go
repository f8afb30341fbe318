package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "learnhub/internal/errors"
	"learnhub/internal/logging"
	"learnhub/internal/model"
	"learnhub/internal/repository"
)

// AdminTarget is the state the bootstrap administrator account must be in.
type AdminTarget struct {
	Email    string
	Name     string
	Password string
}

// ReconcileOutcome describes what Reconcile had to do.
type ReconcileOutcome string

const (
	ReconcileCreated   ReconcileOutcome = "created"
	ReconcileUpdated   ReconcileOutcome = "updated"
	ReconcileUnchanged ReconcileOutcome = "unchanged"
)

// AdminReconciler converges the bootstrap administrator account to its target.
type AdminReconciler struct {
	users repository.UserRepository
	cost  int
}

// NewAdminReconciler creates a reconciler hashing passwords with bcryptCost.
func NewAdminReconciler(users repository.UserRepository) *AdminReconciler {
	return &AdminReconciler{users: users, cost: bcryptCost}
}

// Reconcile ensures exactly one account exists for target.Email with the
// superadmin role, target.Name and a hash of target.Password. Repeated calls
// with the same target write nothing. It never deletes accounts or changes
// an email. Any error leaves the state unknown and must stop startup.
func (r *AdminReconciler) Reconcile(ctx context.Context, target AdminTarget) (ReconcileOutcome, error) {
	email := normalizeEmail(target.Email)
	if email == "" {
		return "", apperrors.Validationf("admin email is required")
	}
	if target.Password == "" {
		return "", apperrors.Validationf("admin password is required")
	}

	existing, err := r.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("find admin account: %w", err)
	}

	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(target.Password), r.cost)
		if err != nil {
			return "", fmt.Errorf("hash admin password: %w", err)
		}
		admin := &model.User{
			Name:         target.Name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         model.RoleSuperAdmin,
		}
		if err := r.users.Create(ctx, admin); err != nil {
			return "", fmt.Errorf("create admin account: %w", err)
		}
		logging.Log().WithField("email", email).Info("bootstrap admin account created")
		return ReconcileCreated, nil
	}

	staged := map[string]interface{}{}
	if existing.Role != model.RoleSuperAdmin {
		staged["role"] = model.RoleSuperAdmin
	}
	if existing.Name != target.Name {
		staged["name"] = target.Name
	}
	if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(target.Password)) != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(target.Password), r.cost)
		if err != nil {
			return "", fmt.Errorf("hash admin password: %w", err)
		}
		staged["password_hash"] = string(hash)
	}

	if len(staged) == 0 {
		logging.Log().WithField("email", email).Debug("bootstrap admin account already reconciled")
		return ReconcileUnchanged, nil
	}

	if err := r.users.UpdateFields(ctx, existing.ID, staged); err != nil {
		return "", fmt.Errorf("update admin account: %w", err)
	}

	fields := make([]string, 0, len(staged))
	for k := range staged {
		fields = append(fields, k)
	}
	logging.Log().WithFields(logrus.Fields{"email": email, "fields": fields}).Info("bootstrap admin account reconciled")
	return ReconcileUpdated, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
