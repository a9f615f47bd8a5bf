package biz

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/clearlabel/transparency_portal/internal/conf"
)

// mockUserRepo 模拟用户仓库
type mockUserRepo struct {
	users map[string]*User
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *User) (*User, error) {
	u.ID = len(m.users) + 1
	m.users[u.Email] = u
	return u, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
	}
	return u, nil
}

func newUserUseCase() *UserUseCase {
	repo := &mockUserRepo{users: map[string]*User{}}
	return NewUserUseCase(repo, &conf.Auth{JwtKey: "test-secret"}, log.DefaultLogger)
}

func TestUserUseCase_RegisterAndLogin(t *testing.T) {
	uc := newUserUseCase()

	u, token, err := uc.Register(context.Background(), "user@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Error("Register() 未签发 token")
	}
	if u.PasswordHash == "secret123" {
		t.Error("密码未做哈希处理")
	}

	// 重复注册
	if _, _, err := uc.Register(context.Background(), "user@example.com", "secret123"); !errors.IsConflict(err) {
		t.Errorf("重复注册 err = %v, want Conflict", err)
	}

	// 登录成功
	_, token, err = uc.Login(context.Background(), "user@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	userID, email, err := uc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if userID != u.ID || email != "user@example.com" {
		t.Errorf("VerifyToken() = (%d, %q), want (%d, user@example.com)", userID, email, u.ID)
	}

	// 密码错误
	if _, _, err := uc.Login(context.Background(), "user@example.com", "wrong"); !errors.IsUnauthorized(err) {
		t.Errorf("错误密码 err = %v, want Unauthorized", err)
	}
}

func TestUserUseCase_VerifyTokenInvalid(t *testing.T) {
	uc := newUserUseCase()
	if _, _, err := uc.VerifyToken("not-a-token"); !errors.IsUnauthorized(err) {
		t.Errorf("err = %v, want Unauthorized", err)
	}
}

func TestUserUseCase_RegisterValidation(t *testing.T) {
	uc := newUserUseCase()
	if _, _, err := uc.Register(context.Background(), "bad-email", "secret123"); !errors.IsBadRequest(err) {
		t.Errorf("err = %v, want BadRequest", err)
	}
}
