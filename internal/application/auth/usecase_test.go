package auth

import (
	"context"
	"testing"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFinderMock struct{ mock.Mock }

func (m *userFinderMock) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

type auditSpy struct{ entries []audit.Entry }

func (a *auditSpy) Log(_ context.Context, e audit.Entry) { a.entries = append(a.entries, e) }

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

var cfg = JWTConfig{Secret: "test-secret", ExpMinutes: 5, Issuer: "test"}

func TestLogin_Success(t *testing.T) {
	users := new(userFinderMock)
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(&entity.User{
		ID: "u-1", Name: "Ana", Email: "ana@example.com", Active: true,
		PasswordHash: hashed(t, "clave"), Roles: []string{"OPERADOR"},
	}, nil)
	spy := &auditSpy{}

	out, err := NewAuthUseCase(users, spy, cfg).Login(context.Background(),
		dto.LoginRequest{Email: "  ANA@example.com ", Password: "clave"}, "10.0.0.1")
	require.NoError(t, err)

	claims, err := jwt.Parse(cfg.Secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, []string{"OPERADOR"}, claims.Roles)

	require.Len(t, spy.entries, 1)
	assert.Equal(t, entity.EventLoginSuccess, spy.entries[0].Event)
	assert.Equal(t, "10.0.0.1", spy.entries[0].IP)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	users := new(userFinderMock)
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(&entity.User{
		ID: "u-1", Email: "ana@example.com", Active: true, PasswordHash: hashed(t, "clave"),
	}, nil)
	users.On("GetByEmail", mock.Anything, "nadie@example.com").Return(nil, nil)
	spy := &auditSpy{}
	uc := NewAuthUseCase(users, spy, cfg)

	_, errWrong := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "otra"}, "")
	_, errUnknown := uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "x"}, "")

	assert.ErrorIs(t, errWrong, domain.ErrUnauthorized)
	assert.ErrorIs(t, errUnknown, domain.ErrUnauthorized)
	require.Len(t, spy.entries, 2)
	for _, e := range spy.entries {
		assert.Equal(t, entity.EventLoginFailure, e.Event)
		assert.Equal(t, entity.AuditWarn, e.Level)
	}
	assert.Equal(t, entity.ActorAnonymous, spy.entries[1].ActorID)
}

func TestLogin_InactiveUserForbidden(t *testing.T) {
	users := new(userFinderMock)
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(&entity.User{
		ID: "u-1", Email: "ana@example.com", Active: false, PasswordHash: hashed(t, "clave"),
	}, nil)

	_, err := NewAuthUseCase(users, &auditSpy{}, cfg).Login(context.Background(),
		dto.LoginRequest{Email: "ana@example.com", Password: "clave"}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
