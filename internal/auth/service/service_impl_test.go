package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
	authrepo "github.com/smallbiznis/referra/internal/auth/repository"
	authservice "github.com/smallbiznis/referra/internal/auth/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) authdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(51)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return authservice.New(authservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        authrepo.Provide(),
		SessionRepo: authrepo.ProvideSessions(),
	})
}

func TestLoginAndAuthenticateRoundtrip(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	user, err := svc.CreateUser(ctx, nil, authdomain.CreateUserRequest{
		Email:       "Jean@Example.com",
		Password:    "s3cret!",
		DisplayName: "Jean",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "jean@example.com" {
		t.Fatalf("email must be normalized, got %q", user.Email)
	}

	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "jean@example.com",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("login must return a session token")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatal("session must expire in the future")
	}

	sess, err := svc.Authenticate(ctx, result.RawToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.UserID != user.ID {
		t.Fatalf("session bound to wrong user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	if _, err := svc.CreateUser(ctx, nil, authdomain.CreateUserRequest{
		Email:    "jean@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "jean@example.com",
		Password: "wrong",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	if _, err := svc.CreateUser(ctx, nil, authdomain.CreateUserRequest{
		Email:    "jean@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "jean@example.com",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, result.RawToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Authenticate(ctx, result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	if _, err := svc.CreateUser(ctx, nil, authdomain.CreateUserRequest{
		Email:    "jean@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := svc.CreateUser(ctx, nil, authdomain.CreateUserRequest{
		Email:    "JEAN@example.com",
		Password: "other-secret",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db)

	_, err := svc.CreateUser(context.Background(), nil, authdomain.CreateUserRequest{
		Email:    "jean@example.com",
		Password: "abc",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
