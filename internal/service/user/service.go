package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	tokenrepo "ecommerce-backend/internal/repository/token"
	userrepo "ecommerce-backend/internal/repository/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minAge = 18

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

type cartStore interface {
	Create(ctx context.Context, ownerID *string) (*domain.Cart, error)
	AssignOwner(ctx context.Context, cartID, ownerID string) error
	Delete(ctx context.Context, id string) error
}

// Service handles registration, login, token lookups and account management.
type Service struct {
	repo        userrepo.Repository
	carts       cartStore
	tokens      *tokenManager
	logger      *zap.Logger
	accessTTL   time.Duration
	passwordMin int
}

func New(repo userrepo.Repository, carts cartStore, tokens tokenrepo.Repository, accessTTL time.Duration, logger *zap.Logger) *Service {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &Service{
		repo:        repo,
		carts:       carts,
		tokens:      newTokenManager(tokens),
		logger:      logging.OrNop(logger).Named("user_service"),
		accessTTL:   accessTTL,
		passwordMin: 8,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
}

// Register creates a regular user together with their cart.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.RegisterWithRole(ctx, in, domain.RoleUser)
}

// RegisterWithRole is Register for an explicit role; it is not reachable from the public API.
func (s *Service) RegisterWithRole(ctx context.Context, in RegisterInput, role string) (*domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalidInput)
	}
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name required", domain.ErrInvalidInput)
	}
	if in.Age < minAge {
		return nil, fmt.Errorf("%w: must be at least %d years old", domain.ErrInvalidInput, minAge)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Create(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	u, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		Age:          in.Age,
		Role:         role,
		CartID:       cart.ID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.carts.AssignOwner(ctx, cart.ID, u.ID); err != nil {
		return nil, fmt.Errorf("assign cart owner: %w", err)
	}
	s.logger.Info("registered user", zap.String("user_id", u.ID), zap.String("cart_id", cart.ID), zap.String("role", role))
	return u, nil
}

// Login validates credentials and returns an access token plus the user.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if u.CartID == "" {
		if err := s.ensureCart(ctx, u); err != nil {
			return nil, "", err
		}
	}

	access, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, access, nil
}

// ensureCart gives a cartless account (for example one inserted by hand) a new cart.
func (s *Service) ensureCart(ctx context.Context, u *domain.User) error {
	cart, err := s.carts.Create(ctx, &u.ID)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	if err := s.repo.SetCart(ctx, u.ID, cart.ID); err != nil {
		return fmt.Errorf("link cart: %w", err)
	}
	u.CartID = cart.ID
	s.logger.Info("created missing cart", zap.String("user_id", u.ID), zap.String("cart_id", cart.ID))
	return nil
}

// Logout revokes an access token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
