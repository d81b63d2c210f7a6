package service

import (
	"errors"
	"testing"

	"github.com/stayhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUserTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestUserServiceRegisterAndAuthenticate(t *testing.T) {
	cleanup := setupUserTestDB(t)
	defer cleanup()

	svc := NewUserService(db.DB)

	user, err := svc.Register(RegisterInput{
		Username: "merchant01",
		Password: "secret-pass",
		Role:     db.RoleMerchant,
		Nickname: "云端客栈",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected user to have ID")
	}
	if user.Password == "secret-pass" {
		t.Fatal("expected password to be hashed")
	}

	if _, err := svc.Register(RegisterInput{Username: "merchant01", Password: "another-pass"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	authed, err := svc.Authenticate("merchant01", "secret-pass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("unexpected user: %d", authed.ID)
	}

	if _, err := svc.Authenticate("merchant01", "wrong"); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("nobody", "secret-pass"); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials for unknown user, got %v", err)
	}
}

func TestUserServiceRegisterValidation(t *testing.T) {
	cleanup := setupUserTestDB(t)
	defer cleanup()

	svc := NewUserService(db.DB)

	if _, err := svc.Register(RegisterInput{Username: "ab", Password: "secret-pass"}); !errors.Is(err, ErrUserInvalid) {
		t.Fatalf("expected ErrUserInvalid for short username, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "guest01", Password: "123"}); !errors.Is(err, ErrUserInvalid) {
		t.Fatalf("expected ErrUserInvalid for short password, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "guest01", Password: "secret-pass", Role: "root"}); !errors.Is(err, ErrUserInvalid) {
		t.Fatalf("expected ErrUserInvalid for unknown role, got %v", err)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	cleanup := setupUserTestDB(t)
	defer cleanup()

	svc := NewUserService(db.DB)

	user, err := svc.Register(RegisterInput{Username: "guest01", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	updated, err := svc.UpdateProfile(user.ID, ProfileInput{Nickname: "旅行者", Phone: "13800138000"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Nickname != "旅行者" || updated.Phone != "13800138000" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if _, err := svc.UpdateProfile(9999, ProfileInput{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
