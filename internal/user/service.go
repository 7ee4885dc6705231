package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-kiosk/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidInput   = errors.New("email and password are required")
)

// Status values reported by UpdatePermissions.
const (
	StatusSuccess      = "Success"
	StatusUserNotFound = "User not found"
)

// UserService orchestrates authentication and role changes.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
	ids    *utilities.IDGenerator
	clock  clockwork.Clock
}

// NewUserService wires a service on db. Nil collaborators get defaults
// (bcrypt cost 12, node 1 ids, wall clock).
func NewUserService(db *sqlx.DB, hasher PasswordHasher, ids *utilities.IDGenerator, clock clockwork.Clock) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if ids == nil {
		ids = utilities.NewIDGenerator(1)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UserService{repo: userrepo.NewUserRepo(db), hasher: hasher, ids: ids, clock: clock}
}

// Repo exposes the underlying repository (schema setup, CLI).
func (s *UserService) Repo() *userrepo.UserRepo { return s.repo }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthenticatePassword looks up the credential by email and verifies the password.
// Unknown email and wrong password both return ErrBadCredentials.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrBadCredentials
		} // avoid user enumeration
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// SignupUser creates a user with a hashed password.
func (s *UserService) SignupUser(ctx context.Context, email, password, role string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if role == "" {
		role = entity.DefaultRole
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	u := &entity.User{
		ID:           s.ids.NewID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces a user's password.
func (s *UserService) SetPassword(ctx context.Context, email, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash, s.clock.Now().UTC())
}

// PermissionsResult is the single response shape of UpdatePermissions.
type PermissionsResult struct {
	UserID             string   `json:"userId"`
	UpdatedPermissions []string `json:"updatedPermissions"`
	Status             string   `json:"status"`
}

// UpdatePermissions stores the first requested permission as the user's role.
// The rest of the list is echoed back but not persisted. An empty list leaves
// the role untouched.
func (s *UserService) UpdatePermissions(ctx context.Context, userID string, perms []string) (*PermissionsResult, error) {
	if perms == nil {
		perms = []string{}
	}
	var found bool
	var err error
	if len(perms) > 0 {
		found, err = s.repo.UpdateRole(ctx, userID, perms[0], s.clock.Now().UTC())
	} else {
		found, err = s.repo.Exists(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if !found {
		return nil, failure.NotFound(StatusUserNotFound)
	}
	return &PermissionsResult{UserID: userID, UpdatedPermissions: perms, Status: StatusSuccess}, nil
}
