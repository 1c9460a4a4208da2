package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/model"
)

// Common auth errors.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenType distinguishes student, teacher, and admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeTeacher TokenType = "teacher"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields. This is the
// identity context the core consumes: a caller is a role plus an id.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
}

// AuthService handles credential verification and JWT issuance.
type AuthService struct {
	cfg      *config.Config
	students StudentStore
	teachers TeacherStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, students StudentStore, teachers TeacherStore) *AuthService {
	return &AuthService{cfg: cfg, students: students, teachers: teachers}
}

// StudentLogin verifies student credentials and issues a token.
func (s *AuthService) StudentLogin(ctx context.Context, email, password string) (string, *model.Student, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(TokenTypeStudent, student.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, student, nil
}

// TeacherLogin verifies teacher/admin credentials and issues a token. The
// token type follows the account role.
func (s *AuthService) TeacherLogin(ctx context.Context, email, password string) (string, *model.Teacher, error) {
	teacher, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenType := TokenTypeTeacher
	if teacher.Role == model.RoleAdmin {
		tokenType = TokenTypeAdmin
	}
	token, err := s.generateToken(tokenType, teacher.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, teacher, nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateToken(tokenType TokenType, userID int) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
