package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/database"
	"github.com/codequesthq/codequest-backend/internal/logger"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	teacherRepo := repository.NewTeacherRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Teacher Account ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Print("Role (teacher/admin, default teacher): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(strings.ToLower(roleStr))
	role := model.RoleTeacher
	switch roleStr {
	case "", "teacher":
	case "admin":
		role = model.RoleAdmin
	default:
		fmt.Println("Error: Role must be teacher or admin")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		fmt.Println("Error: Failed to hash password")
		return
	}

	t := &model.Teacher{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := teacherRepo.Create(ctx, t); err != nil {
		fmt.Printf("Error: Failed to create account: %v\n", err)
		return
	}

	fmt.Printf("Created %s account #%d (%s)\n", role, t.ID, email)
}
