package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/service"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	students := newFakeStudentStore(&model.Student{
		ID: 7, Email: "ada@example.com", PasswordHash: string(hash),
	})
	teachers := newFakeTeacherStore(
		&model.Teacher{ID: 1, Email: "turing@example.com", Role: model.RoleTeacher, PasswordHash: string(hash)},
		&model.Teacher{ID: 2, Email: "root@example.com", Role: model.RoleAdmin, PasswordHash: string(hash)},
	)
	return service.NewAuthService(cfg, students, teachers)
}

func TestStudentLoginRoundtrip(t *testing.T) {
	svc := newAuthService(t)

	token, student, err := svc.StudentLogin(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, 7, student.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, service.TokenTypeStudent, claims.TokenType)
	assert.Equal(t, 7, claims.UserID)
}

func TestStudentLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.StudentLogin(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.StudentLogin(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestTeacherLoginRoleMapsToTokenType(t *testing.T) {
	svc := newAuthService(t)

	token, _, err := svc.TeacherLogin(context.Background(), "turing@example.com", "hunter22")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, service.TokenTypeTeacher, claims.TokenType)

	token, _, err = svc.TeacherLogin(context.Background(), "root@example.com", "hunter22")
	require.NoError(t, err)
	claims, err = svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, service.TokenTypeAdmin, claims.TokenType)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
