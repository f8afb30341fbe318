package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "learnhub/internal/errors"
	"learnhub/internal/model"
)

var adminTarget = AdminTarget{Email: "  Admin@X.io ", Name: "Super Admin", Password: "correct horse"}

func newTestReconciler(repo *MockUserRepository) *AdminReconciler {
	r := NewAdminReconciler(repo)
	r.cost = bcrypt.MinCost
	return r
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAdminReconciler_CreatesMissingAccount(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "admin@x.io").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@x.io" &&
			u.Name == "Super Admin" &&
			u.Role == model.RoleSuperAdmin &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
	})).Return(nil)

	outcome, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

	require.NoError(t, err)
	assert.Equal(t, ReconcileCreated, outcome)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminReconciler_NoWriteWhenAlreadyReconciled(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "admin@x.io").Return(&model.User{
		ID:           uuid.New(),
		Email:        "admin@x.io",
		Name:         "Super Admin",
		Role:         model.RoleSuperAdmin,
		PasswordHash: hashFor(t, "correct horse"),
	}, nil)

	outcome, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

	require.NoError(t, err)
	assert.Equal(t, ReconcileUnchanged, outcome)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminReconciler_CorrectsDrift(t *testing.T) {
	tests := []struct {
		name       string
		stored     func(t *testing.T) *model.User
		wantFields []string
	}{
		{
			name: "role demoted",
			stored: func(t *testing.T) *model.User {
				return &model.User{Name: "Super Admin", Role: model.RoleModerator, PasswordHash: hashFor(t, "correct horse")}
			},
			wantFields: []string{"role"},
		},
		{
			name: "name changed",
			stored: func(t *testing.T) *model.User {
				return &model.User{Name: "Someone Else", Role: model.RoleSuperAdmin, PasswordHash: hashFor(t, "correct horse")}
			},
			wantFields: []string{"name"},
		},
		{
			name: "password changed",
			stored: func(t *testing.T) *model.User {
				return &model.User{Name: "Super Admin", Role: model.RoleSuperAdmin, PasswordHash: hashFor(t, "old password")}
			},
			wantFields: []string{"password_hash"},
		},
		{
			name: "everything drifted",
			stored: func(t *testing.T) *model.User {
				return &model.User{Name: "x", Role: "admin superadmin", PasswordHash: "not-a-bcrypt-hash"}
			},
			wantFields: []string{"name", "password_hash", "role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := tt.stored(t)
			stored.ID = uuid.New()
			stored.Email = "admin@x.io"

			var written map[string]interface{}
			repo := new(MockUserRepository)
			repo.On("FindByEmail", mock.Anything, "admin@x.io").Return(stored, nil)
			repo.On("UpdateFields", mock.Anything, stored.ID, mock.Anything).
				Run(func(args mock.Arguments) { written = args.Get(2).(map[string]interface{}) }).
				Return(nil).Once()

			outcome, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

			require.NoError(t, err)
			assert.Equal(t, ReconcileUpdated, outcome)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			repo.AssertNumberOfCalls(t, "UpdateFields", 1)

			keys := make([]string, 0, len(written))
			for k := range written {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.wantFields, keys)
			if v, ok := written["role"]; ok {
				assert.Equal(t, model.RoleSuperAdmin, v)
			}
			if v, ok := written["name"]; ok {
				assert.Equal(t, "Super Admin", v)
			}
			if v, ok := written["password_hash"]; ok {
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(v.(string)), []byte("correct horse")))
			}
		})
	}
}

// memAdminStore is a single-table user store for convergence tests.
type memAdminStore struct {
	MockUserRepository
	users  map[string]*model.User
	writes int
}

func (s *memAdminStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := s.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memAdminStore) Create(_ context.Context, u *model.User) error {
	s.writes++
	u.ID = uuid.New()
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *memAdminStore) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.writes++
	for _, u := range s.users {
		if u.ID != id {
			continue
		}
		if v, ok := fields["role"]; ok {
			u.Role = v.(model.Role)
		}
		if v, ok := fields["name"]; ok {
			u.Name = v.(string)
		}
		if v, ok := fields["password_hash"]; ok {
			u.PasswordHash = v.(string)
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func TestAdminReconciler_ConvergesFromAnyStartingState(t *testing.T) {
	store := &memAdminStore{users: map[string]*model.User{}}
	r := NewAdminReconciler(store)
	r.cost = bcrypt.MinCost
	ctx := context.Background()

	outcome, err := r.Reconcile(ctx, adminTarget)
	require.NoError(t, err)
	assert.Equal(t, ReconcileCreated, outcome)
	assert.Equal(t, 1, store.writes)

	outcome, err = r.Reconcile(ctx, adminTarget)
	require.NoError(t, err)
	assert.Equal(t, ReconcileUnchanged, outcome)
	assert.Equal(t, 1, store.writes, "second run must not write")

	admin := store.users["admin@x.io"]
	admin.Role = model.RoleStudent
	admin.Name = "Hijacked"
	admin.PasswordHash = hashFor(t, "attacker")

	outcome, err = r.Reconcile(ctx, adminTarget)
	require.NoError(t, err)
	assert.Equal(t, ReconcileUpdated, outcome)
	assert.Equal(t, 2, store.writes)

	require.Len(t, store.users, 1)
	admin = store.users["admin@x.io"]
	assert.Equal(t, model.RoleSuperAdmin, admin.Role)
	assert.Equal(t, "Super Admin", admin.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("correct horse")))
}

func TestAdminReconciler_Errors(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		repo := new(MockUserRepository)
		_, err := newTestReconciler(repo).Reconcile(context.Background(), AdminTarget{Email: " ", Password: "pw"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("missing password", func(t *testing.T) {
		repo := new(MockUserRepository)
		_, err := newTestReconciler(repo).Reconcile(context.Background(), AdminTarget{Email: "admin@x.io"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("lookup failure is propagated", func(t *testing.T) {
		repo := new(MockUserRepository)
		dbErr := errors.New("connection refused")
		repo.On("FindByEmail", mock.Anything, "admin@x.io").Return(nil, dbErr)

		_, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

		assert.ErrorIs(t, err, dbErr)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create failure is propagated", func(t *testing.T) {
		repo := new(MockUserRepository)
		dbErr := errors.New("read-only transaction")
		repo.On("FindByEmail", mock.Anything, "admin@x.io").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

		_, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("update failure is propagated", func(t *testing.T) {
		repo := new(MockUserRepository)
		dbErr := errors.New("lock wait timeout")
		repo.On("FindByEmail", mock.Anything, "admin@x.io").
			Return(&model.User{ID: uuid.New(), Name: "x", Role: model.RoleSuperAdmin, PasswordHash: hashFor(t, "correct horse")}, nil)
		repo.On("UpdateFields", mock.Anything, mock.Anything, mock.Anything).Return(dbErr)

		_, err := newTestReconciler(repo).Reconcile(context.Background(), adminTarget)

		assert.ErrorIs(t, err, dbErr)
	})
}
