package model

import "time"

// TeacherRole distinguishes regular teachers from administrators. Admins can
// author competitions like teachers and additionally manage accounts.
type TeacherRole string

const (
	RoleTeacher TeacherRole = "teacher"
	RoleAdmin   TeacherRole = "admin"
)

// Teacher represents a teacher or admin account.
type Teacher struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         TeacherRole `json:"role"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TeacherLoginRequest is the payload for teacher/admin authentication.
type TeacherLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// TeacherLoginResponse is returned after successful teacher login.
type TeacherLoginResponse struct {
	Token   string  `json:"token"`
	Teacher Teacher `json:"teacher"`
}
