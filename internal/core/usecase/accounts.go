package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// adminPrincipalID is the subject of tokens issued to the configured operator.
const adminPrincipalID = "admin"

// AdminCredentials is the operator login configured from the environment.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type AccountUseCase struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	admin  AdminCredentials
	now    func() time.Time
}

func NewAccountUseCase(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	admin AdminCredentials,
) *AccountUseCase {
	admin.Email = normalizeEmail(admin.Email)
	return &AccountUseCase{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		admin:  admin,
		now:    utcNow,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *AccountUseCase) Signup(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	const op = "signup"
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, op, "email and password are required")
	}
	_, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.NewError(domain.ErrConflict, op, "email already registered")
	case !domain.IsKind(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         domain.RoleBusinessOwner,
		CreatedAt:    uc.now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return uc.session(*user)
}

func (uc *AccountUseCase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	const op = "login"
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if domain.IsKind(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrUnauthorized, op, "invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, op, "invalid credentials")
	}
	return uc.session(*user)
}

// AdminLogin authenticates the operator configured by ADMIN_EMAIL and ADMIN_PASSWORD_HASH.
func (uc *AccountUseCase) AdminLogin(_ context.Context, email, password string) (*domain.Session, error) {
	const op = "admin login"
	if uc.admin.Email == "" || uc.admin.PasswordHash == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, op, "admin login disabled")
	}
	if normalizeEmail(email) != uc.admin.Email {
		return nil, domain.NewError(domain.ErrUnauthorized, op, "invalid credentials")
	}
	if err := uc.hasher.Compare(uc.admin.PasswordHash, password); err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, op, "invalid credentials")
	}
	return uc.session(uc.adminUser())
}

func (uc *AccountUseCase) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	if uc.isConfiguredAdmin(principal) {
		user := uc.adminUser()
		return &user, nil
	}
	return uc.users.GetByID(ctx, principal.ID)
}

// Authenticate verifies a bearer token. Account principals are re-read so a
// deleted account or changed role takes effect immediately.
func (uc *AccountUseCase) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	const op = "authenticate"
	principal, err := uc.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}, err
	}
	if uc.isConfiguredAdmin(principal) {
		return principal, nil
	}
	user, err := uc.users.GetByID(ctx, principal.ID)
	if domain.IsKind(err, domain.ErrNotFound) {
		return domain.Principal{}, domain.NewError(domain.ErrUnauthorized, op, "user not found")
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("lookup principal: %w", err)
	}
	return domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (uc *AccountUseCase) isConfiguredAdmin(p domain.Principal) bool {
	return p.ID == adminPrincipalID && p.Role == domain.RoleAdmin && uc.admin.Email != "" && p.Email == uc.admin.Email
}

func (uc *AccountUseCase) adminUser() domain.User {
	return domain.User{ID: adminPrincipalID, Email: uc.admin.Email, FullName: "Administrator", Role: domain.RoleAdmin}
}

func (uc *AccountUseCase) session(user domain.User) (*domain.Session, error) {
	token, err := uc.tokens.Issue(domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}
