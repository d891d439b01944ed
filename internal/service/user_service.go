package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/example/bookstore/internal/auth"
	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/datamodels/user"
)

const minPasswordLen = 6

type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
	logs *LogService
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig, logs *LogService) *UserService {
	return &UserService{repo: repo, jwt: jwt, logs: logs}
}

// RegisterRequest 注册参数
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Name     string
}

// Register 注册普通用户，密码使用 bcrypt 存储
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	} else {
		// email 唯一索引，空值用用户名占位
		req.Email = req.Username + "@users.local"
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserExists
	} else if !isRecordNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
		Role:     user.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isRecordNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// AdminLogin 后台登录，只允许管理员
func (s *UserService) AdminLogin(ctx context.Context, username, password string) (string, *user.User, error) {
	token, u, err := s.Login(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	if !u.IsAdmin() {
		return "", nil, ErrForbidden
	}
	return token, u, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ProfileUpdate 可修改的资料字段，nil 表示不修改
type ProfileUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*user.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
		u.Email = email
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Address != nil {
		u.Address = strings.TrimSpace(*p.Address)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already in use", ErrInvalidInput)
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

// SetRole 修改用户角色
func (s *UserService) SetRole(ctx context.Context, actor Actor, userID int64, role string) (*user.User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != user.RoleUser && role != user.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor.Name(), "user.role", u.Username, role)
	return u, nil
}

// Promote 按用户名提升为管理员，供运维命令使用
func (s *UserService) Promote(ctx context.Context, username string) (*user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.SetRole(ctx, Actor{Username: "bookctl"}, u.ID, user.RoleAdmin)
}
