package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"grouporder/internal/domain"
	"grouporder/internal/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type authUseCase struct {
	userRepo domain.UserRepository
	sessions session.Store
	feed     domain.ChangeFeed
	log      *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, sessions session.Store, feed domain.ChangeFeed, logger *logrus.Logger) domain.AuthUseCase {
	return &authUseCase{
		userRepo: repo,
		sessions: sessions,
		feed:     feed,
		log:      logger,
	}
}

// Register validates the credentials, hashes the password and stores the user.
func (uc *authUseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	v := domain.NewValidationError()
	if !isValidEmail(email) {
		v.Add("email", "invalid email format")
	}
	if err := validatePassword(password); err != nil {
		v.Add("password", err.Error())
	}
	if err := v.Err(); err != nil {
		uc.log.Warnf("Use Case: Registration failed for %s: %v", email, err)
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	created, err := uc.userRepo.CreateUser(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionUsers, Op: domain.OpCreate, ID: created.ID})
	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s", created.ID, created.Email)
	return created, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	if !isValidEmail(email) || password == "" {
		uc.log.Warnf("Use Case: Auth failed - invalid email or empty password for %s", email)
		return "", nil, domain.ErrUnauthenticated
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return "", nil, domain.ErrUnauthenticated
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %s)", email, user.ID)
			return "", nil, domain.ErrUnauthenticated
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", email, err)
		return "", nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	token, err := uc.sessions.Create(ctx, user.ID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create session for user %s: %v", user.ID, err)
		return "", nil, err
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %s)", email, user.ID)
	return token, user, nil
}

func (uc *authUseCase) Logout(ctx context.Context, token string) error {
	if err := uc.sessions.Revoke(ctx, token); err != nil {
		uc.log.Errorf("Use Case: Failed to revoke session: %v", err)
		return err
	}
	return nil
}

func (uc *authUseCase) Authenticate(ctx context.Context, token string) (string, error) {
	return uc.sessions.Resolve(ctx, token)
}

func (uc *authUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user %s: %v", id, err)
		return nil, err
	}
	return user, nil
}

func (uc *authUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.userRepo.ListUsers(ctx)
}

// --- Helper Functions ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail provides a basic check for email format.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

// validatePassword enforces basic password complexity rules.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
