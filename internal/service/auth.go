package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

var (
	// ErrInvalidCredentials 登录凭证不匹配
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated 会话令牌缺失或无效
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthService 封装登录、注销与会话解析。
type AuthService struct {
	users    storage.UserRepository
	sessions storage.SessionRepository
	log      *zap.Logger
}

// NewAuthService 创建认证业务服务。
func NewAuthService(users storage.UserRepository, sessions storage.SessionRepository, log *zap.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, log: log}
}

// LoginInput 定义登录所需的凭证。
type LoginInput struct {
	Email    string
	Password string
}

// Login 校验凭证并签发会话令牌。
// 凭证是不透明字符串，仅做相等比对；任何不匹配都返回 ErrInvalidCredentials，
// 不区分"用户不存在"与"密码错误"。
func (s *AuthService) Login(input LoginInput) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(input.Email)
	if err != nil || user.Password != input.Password {
		return nil, "", ErrInvalidCredentials
	}

	token := s.sessions.CreateSession(user.ID)
	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return user, token, nil
}

// Logout 注销令牌，对未知令牌调用无效果。
func (s *AuthService) Logout(token string) {
	s.sessions.DeleteSession(token)
}

// Authenticate 根据令牌解析当前用户。
func (s *AuthService) Authenticate(token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	userID, err := s.sessions.ResolveSession(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		// 会话指向的用户不在数据集中，视为未认证
		return nil, ErrNotAuthenticated
	}
	return user, nil
}
