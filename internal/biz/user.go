package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clearlabel/transparency_portal/internal/conf"
)

// User 用户实体
type User struct {
	ID           int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo 用户仓库接口
type UserRepo interface {
	// CreateUser 创建用户
	CreateUser(ctx context.Context, u *User) (*User, error)
	// GetUserByEmail 根据邮箱获取用户
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// UserUseCase 用户业务逻辑
type UserUseCase struct {
	repo   UserRepo
	log    *log.Helper
	jwtKey string
}

// NewUserUseCase 创建用户业务逻辑实例
func NewUserUseCase(repo UserRepo, auth *conf.Auth, logger log.Logger) *UserUseCase {
	jwtKey := "default-secret"
	if auth != nil && auth.JwtKey != "" {
		jwtKey = auth.JwtKey
	}
	return &UserUseCase{
		repo:   repo,
		log:    log.NewHelper(logger),
		jwtKey: jwtKey,
	}
}

// Register 用户注册，成功后直接签发 token
func (uc *UserUseCase) Register(ctx context.Context, email, password string) (*User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}

	if existing, _ := uc.repo.GetUserByEmail(ctx, email); existing != nil {
		return nil, "", errors.Conflict("USER_EXISTS", "user with this email already exists")
	}

	// 使用 bcrypt 对密码进行哈希处理
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u, err := uc.repo.CreateUser(ctx, &User{Email: email, PasswordHash: string(hashedPassword)})
	if err != nil {
		return nil, "", err
	}

	token, err := uc.signToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 用户登录
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", errors.Unauthorized("AUTH_FAILED", "invalid email or password")
	}

	// 验证密码哈希
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", errors.Unauthorized("AUTH_FAILED", "invalid email or password")
	}

	token, err := uc.signToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// VerifyToken 校验 Bearer token 并返回用户 ID 与邮箱
func (uc *UserUseCase) VerifyToken(tokenStr string) (int, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("AUTH_FAILED", "unexpected signing method")
		}
		return []byte(uc.jwtKey), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.Unauthorized("AUTH_FAILED", "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.Unauthorized("AUTH_FAILED", "invalid token claims")
	}
	userID, _ := claims["userId"].(float64)
	email, _ := claims["email"].(string)
	if userID < 1 || email == "" {
		return 0, "", errors.Unauthorized("AUTH_FAILED", "invalid token claims")
	}
	return int(userID), email, nil
}

// signToken 签发 24 小时有效的 JWT
func (uc *UserUseCase) signToken(u *User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": u.ID,
		"email":  u.Email,
		"exp":    time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString([]byte(uc.jwtKey))
}
