package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lamatmed/e-rim-api/internal/model"
	"github.com/lamatmed/e-rim-api/internal/repository"
	"github.com/lamatmed/e-rim-api/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this phone number already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrForbidden          = errors.New("forbidden: user does not have permission for this action")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrInvalidRole        = errors.New("role must be 'user' or 'admin'")
)

// UserService provides account management and authentication services
type UserService interface {
	Register(ctx context.Context, name, phone, password string, profileImage *string) (*model.User, string, error)
	Login(ctx context.Context, phone, password string) (*model.User, string, error)
	GetUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, actor *model.User, targetID string, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, targetID string) error
	CreateAdmin(ctx context.Context, name, phone, password string) (*model.User, error)
	EnsureInitialAdmin(ctx context.Context, name, phone, password string) error
}

type userService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil) UserService {
	return &userService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
	}
}

// newUser constructs a user record with all defaults assigned in one place:
// fresh ID, role, unblocked, hashed credential.
func newUser(name, phone, passwordHash, role string, profileImage *string) *model.User {
	return &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		PasswordHash: passwordHash,
		ProfileImage: profileImage,
		Role:         role,
		Blocked:      false,
	}
}

func (s *userService) create(ctx context.Context, name, phone, password, role string, profileImage *string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := newUser(name, phone, hashedPassword, role, profileImage)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return user, nil
}

// Register creates a new user account and issues a token for it
func (s *userService) Register(ctx context.Context, name, phone, password string, profileImage *string) (*model.User, string, error) {
	user, err := s.create(ctx, name, phone, password, model.RoleUser, profileImage)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		log.Printf("ERROR: User %s (ID: %s) created, but failed to generate token: %v", user.Phone, user.ID, err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *userService) Login(ctx context.Context, phone, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by phone: %w", err)
	}
	if user == nil {
		// Same error as a wrong password so the response does not reveal
		// whether the phone number is registered.
		return nil, "", ErrInvalidCredentials
	}

	if user.Blocked {
		return nil, "", ErrAccountBlocked
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUsers returns all user accounts
func (s *userService) GetUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUserByID returns a single user account
func (s *userService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial update to the target account. Any authenticated
// user may update their own name, address and profile image. Only an admin
// may touch other accounts or the role and blocked fields; role/blocked in
// a non-admin request are ignored, not rejected.
func (s *userService) Update(ctx context.Context, actor *model.User, targetID string, req model.UpdateUserRequest) (*model.User, error) {
	isAdmin := actor.Role == model.RoleAdmin
	if !isAdmin && actor.ID != targetID {
		return nil, ErrForbidden
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for update: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		target.Name = name
	}
	if req.Address != nil {
		target.Address = req.Address
	}
	if req.ProfileImage != nil {
		target.ProfileImage = req.ProfileImage
	}
	if isAdmin {
		if req.Role != nil {
			if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
				return nil, ErrInvalidRole
			}
			target.Role = *req.Role
		}
		if req.Blocked != nil {
			target.Blocked = *req.Blocked
		}
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user in repository: %w", err)
	}
	return target, nil
}

// Delete removes the target account. Self-deletion is allowed; anything
// else requires the admin role.
func (s *userService) Delete(ctx context.Context, actor *model.User, targetID string) error {
	if actor.Role != model.RoleAdmin && actor.ID != targetID {
		return ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user in repository: %w", err)
	}
	return nil
}

// CreateAdmin creates a new account with the admin role. No token is
// issued; the new admin logs in with their own credentials.
func (s *userService) CreateAdmin(ctx context.Context, name, phone, password string) (*model.User, error) {
	return s.create(ctx, name, phone, password, model.RoleAdmin, nil)
}

// EnsureInitialAdmin seeds the first admin account at startup when none
// exists for the configured phone. Idempotent: an existing account with the
// same phone is left untouched.
func (s *userService) EnsureInitialAdmin(ctx context.Context, name, phone, password string) error {
	existing, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to check for initial admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	user, err := s.CreateAdmin(ctx, name, phone, password)
	if err != nil {
		// A concurrent boot may have won the insert; that still satisfies
		// the seeding goal.
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	log.Printf("INFO: initial admin %s (ID: %s) created", user.Phone, user.ID)
	return nil
}
