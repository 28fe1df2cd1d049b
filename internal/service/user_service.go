package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash/internal/config"
	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
}

type UpdateUserRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"omitempty,min=6"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserResponse `json:"user"`
}

// DTO for returning User without exposing the password hash
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

type MeResponse struct {
	UserResponse
	Permissions []string `json:"permissions"`
}

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (*MeResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int, search string) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo        repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	txManager   repository.TransactionManager
	authz       AuthorizationService
	auth        config.AuthConfig
	log         *zap.Logger
	now         func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	txManager repository.TransactionManager,
	authz AuthorizationService,
	auth config.AuthConfig,
	log *zap.Logger,
) UserService {
	return &userService{
		repo:        repo,
		refreshRepo: refreshRepo,
		txManager:   txManager,
		authz:       authz,
		auth:        auth,
		log:         log,
		now:         time.Now,
	}
}

func mapToResponse(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.Email != nil {
		res.Email = *user.Email
	}
	if user.Phone != nil {
		res.Phone = *user.Phone
	}
	return res
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *userService) checkRole(ctx context.Context, role string) error {
	exists, err := s.authz.RoleExists(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !exists {
		return invalid("role %q does not exist", role)
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := s.checkRole(ctx, req.Role); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, invalid("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username:    req.Username,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Email:       optional(req.Email),
		Phone:       optional(req.Phone),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, invalid("username already exists")
		}
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a stored refresh token: the old row is deleted and a new pair issued.
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}

	var res *TokenResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := s.refreshRepo.FindValid(txCtx, refreshToken, s.now())
		if err != nil {
			if isNotFound(err) {
				return ErrUnauthenticated
			}
			return err
		}
		user, err := s.repo.GetByID(txCtx, stored.UserID)
		if err != nil {
			if isNotFound(err) {
				return ErrUnauthenticated
			}
			return err
		}
		if err := s.refreshRepo.Delete(txCtx, stored.ID); err != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		res, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	stored, err := s.refreshRepo.FindValid(ctx, refreshToken, s.now())
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return s.refreshRepo.Delete(ctx, stored.ID)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	now := s.now()
	access, err := SignAccessToken(Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, s.auth.JWTSecret, s.auth.AccessTTL, now)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.auth.RefreshTTL),
	}
	if err := s.refreshRepo.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(s.auth.AccessTTL.Seconds()),
		User:         mapToResponse(user),
	}, nil
}

func (s *userService) Me(ctx context.Context) (*MeResponse, error) {
	id := IdentityFromContext(ctx)
	if id == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	perms, err := s.authz.PermissionNamesForRole(ctx, user.Role)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			s.log.Warn("user role has no matching role record", zap.String("role", user.Role), zap.String("user_id", user.ID.String()))
			return nil, fmt.Errorf("%w: %w", ErrForbidden, ErrRoleNotFound)
		}
		return nil, err
	}
	return &MeResponse{UserResponse: *mapToResponse(user), Permissions: perms}, nil
}

func (s *userService) findUser(ctx context.Context, id string) (*model.User, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int, search string) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != "" && req.Role != user.Role {
		if err := s.checkRole(ctx, req.Role); err != nil {
			return nil, err
		}
		user.Role = req.Role
	}
	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Email != "" {
		user.Email = optional(req.Email)
	}
	if req.Phone != "" {
		user.Phone = optional(req.Phone)
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("failed to hash password")
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if caller := IdentityFromContext(ctx); caller != nil && caller.UserID == user.ID {
		return invalid("you cannot delete your own account")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.refreshRepo.DeleteByUser(txCtx, user.ID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, user.ID)
	})
}
