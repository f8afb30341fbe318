package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"learnhub/internal/auth"
	"learnhub/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "successful registration",
			email:     "Test@Example.com",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:      "user already exists",
			email:     "existing@example.com",
			password:  "password123",
			nameField: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:      "unique index race",
			email:     "race@example.com",
			password:  "password123",
			nameField: "Race User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
			user, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, tt.nameField, user.Name)
				assert.Equal(t, model.RoleStudent, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	stored := &model.User{ID: userID, Email: "test@example.com", PasswordHash: string(hashedPassword), Role: model.RoleAdmin}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockTokenStore)

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, refreshToken)
				claims, err := jwtService.ValidateToken(accessToken)
				require.NoError(t, err)
				assert.Equal(t, model.RoleAdmin, claims.Role)
				assert.Equal(t, userID, claims.UserID)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Role: model.RoleStudent}
	tokenID, refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)

	t.Run("known token picks up current role", func(t *testing.T) {
		repo := new(MockUserRepository)
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, nil)
		promoted := *user
		promoted.Role = model.RoleModerator
		repo.On("FindByID", mock.Anything, user.ID).Return(&promoted, nil)

		access, err := NewAuthService(repo, jwtService, store).RefreshToken(context.Background(), refresh)

		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, model.RoleModerator, claims.Role)
	})

	t.Run("revoked token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, auth.ErrRefreshTokenNotFound)

		_, err := NewAuthService(new(MockUserRepository), jwtService, store).RefreshToken(context.Background(), refresh)

		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		access, err := jwtService.GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore)).RefreshToken(context.Background(), access)

		assert.Equal(t, ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refresh, err := jwtService.GenerateRefreshToken(&model.User{ID: uuid.New(), Email: "a@b.c", Role: model.RoleStudent})
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

	require.NoError(t, NewAuthService(new(MockUserRepository), jwtService, store).Logout(context.Background(), refresh))
	store.AssertExpectations(t)

	assert.Equal(t, ErrInvalidRefreshToken, NewAuthService(new(MockUserRepository), jwtService, store).Logout(context.Background(), "garbage"))
}
