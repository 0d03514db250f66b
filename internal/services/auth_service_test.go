package services

import (
	"context"
	"errors"
	"testing"

	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdminRepo struct {
	users map[string]*models.AdminUser
}

func (r *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *fakeAdminRepo) Create(ctx context.Context, user *models.AdminUser) error {
	r.users[user.Email] = user
	return nil
}

func newAuthFixture(t *testing.T) (*AuthServiceImpl, *config.Config) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	repo := &fakeAdminRepo{users: map[string]*models.AdminUser{
		"admin@example.com": {
			ID:       primitive.NewObjectID(),
			Email:    "admin@example.com",
			Password: string(hash),
			Role:     "admin",
		},
	}}
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = 3600
	return NewAuthService(repo, cfg), cfg
}

func TestLogin(t *testing.T) {
	svc, cfg := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Email != "admin@example.com" || resp.Role != "admin" {
		t.Errorf("unexpected response %+v", resp)
	}

	claims, err := utils.ValidateJWT(resp.Token, cfg)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims["email"] != "admin@example.com" {
		t.Errorf("token email claim = %v", claims["email"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-password",
	})
	// Unknown email and wrong password return the same error
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
