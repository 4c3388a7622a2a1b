package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"task_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates database operations during testing.
type mockUserRepository struct {
	CreateFunc         func(ctx context.Context, user *entity.User) error
	FindByEmailFunc    func(ctx context.Context, email string) (*entity.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*entity.User, error)
	FindByIDFunc       func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// mockTokenGenerator is a mock implementation of the TokenGenerator interface.
type mockTokenGenerator struct {
	GenerateTokenFunc func(userID uint, username string) (string, error)
}

func (m *mockTokenGenerator) GenerateToken(userID uint, username string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, username)
	}
	return "mock-jwt-token", nil
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Username:  "taro",
		Password:  "password123!",
	}
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Run("successful registration hashes the password and issues a token", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				// Verify that the password is hashed with a valid bcrypt digest
				if user.Password == "password123!" {
					t.Errorf("password is not hashed")
				}
				if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123!")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				user.ID = 7
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
		token, user, err := uc.Register(context.Background(), validInput())

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "mock-jwt-token" {
			t.Errorf("expected token, got %q", token)
		}
		if user.ID != 7 {
			t.Errorf("expected persisted user to be returned, got %+v", user)
		}
	})

	t.Run("weak passwords are rejected", func(t *testing.T) {
		tests := []struct {
			name     string
			password string
		}{
			{"too short", "a1!"},
			{"no digit", "password!!"},
			{"no letter", "12345678!"},
			{"no symbol", "password123"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				created := false
				mockRepo := &mockUserRepository{
					CreateFunc: func(ctx context.Context, user *entity.User) error {
						created = true
						return nil
					},
				}

				uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
				in := validInput()
				in.Password = tt.password
				_, _, err := uc.Register(context.Background(), in)

				if !errors.Is(err, ErrWeakPassword) {
					t.Errorf("expected ErrWeakPassword, got %v", err)
				}
				if created {
					t.Error("user must not be created with a weak password")
				}
			})
		}
	})

	t.Run("duplicate email wins over duplicate username", func(t *testing.T) {
		existing := &entity.User{ID: 1, Email: "taro@example.com", Username: "taro"}
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return existing, nil
			},
			FindByUsernameFunc: func(ctx context.Context, username string) (*entity.User, error) {
				return existing, nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
		_, _, err := uc.Register(context.Background(), validInput())

		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByUsernameFunc: func(ctx context.Context, username string) (*entity.User, error) {
				return &entity.User{ID: 1, Username: username}, nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
		_, _, err := uc.Register(context.Background(), validInput())

		if !errors.Is(err, ErrUsernameAlreadyExists) {
			t.Errorf("expected ErrUsernameAlreadyExists, got %v", err)
		}
	})

	t.Run("repository create failure propagates", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return expectedErr
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
		_, _, err := uc.Register(context.Background(), validInput())

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error '%v', got: %v", expectedErr, err)
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	// Hashed password for testing
	password := "password123!"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	testUser := &entity.User{
		ID:       1,
		Email:    "taro@example.com",
		Username: "taro",
		Password: string(hashedPassword),
	}

	repoWithUser := func() *mockUserRepository {
		return &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				if email == testUser.Email {
					return testUser, nil
				}
				return nil, ErrUserNotFound
			},
		}
	}

	t.Run("successful login", func(t *testing.T) {
		uc := NewAuthUsecase(repoWithUser(), &mockTokenGenerator{
			GenerateTokenFunc: func(userID uint, username string) (string, error) {
				if userID != testUser.ID || username != testUser.Username {
					t.Errorf("token minted for wrong identity: %d %q", userID, username)
				}
				return "signed-token", nil
			},
		})

		token, user, err := uc.Login(context.Background(), testUser.Email, password)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "signed-token" {
			t.Errorf("expected token, got %q", token)
		}
		if user.ID != testUser.ID {
			t.Errorf("expected user %d, got %+v", testUser.ID, user)
		}
	})

	t.Run("wrong password and unknown email yield the same error", func(t *testing.T) {
		uc := NewAuthUsecase(repoWithUser(), &mockTokenGenerator{})

		_, _, wrongPassErr := uc.Login(context.Background(), testUser.Email, "wrong-password1!")
		_, _, unknownEmailErr := uc.Login(context.Background(), "nobody@example.com", password)

		if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassErr)
		}
		if !errors.Is(unknownEmailErr, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmailErr)
		}
		// Identical messages so callers cannot distinguish the two cases
		if wrongPassErr.Error() != unknownEmailErr.Error() {
			t.Errorf("errors differ: %q vs %q", wrongPassErr.Error(), unknownEmailErr.Error())
		}
	})

	t.Run("token generation failure", func(t *testing.T) {
		uc := NewAuthUsecase(repoWithUser(), &mockTokenGenerator{
			GenerateTokenFunc: func(userID uint, username string) (string, error) {
				return "", errors.New("signing failed")
			},
		})

		_, _, err := uc.Login(context.Background(), testUser.Email, password)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if errors.Is(err, ErrInvalidCredentials) {
			t.Error("token failure must not masquerade as invalid credentials")
		}
	})
}

func TestAuthUsecase_Validate(t *testing.T) {
	t.Run("existing user is returned", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				return &entity.User{ID: id, Username: "taro"}, nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenGenerator{})
		user, err := uc.Validate(context.Background(), 42)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != 42 {
			t.Errorf("expected user 42, got %+v", user)
		}
	})

	t.Run("deleted user fails validation", func(t *testing.T) {
		uc := NewAuthUsecase(&mockUserRepository{}, &mockTokenGenerator{})

		_, err := uc.Validate(context.Background(), 42)

		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
