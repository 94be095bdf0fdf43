package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type AdminService struct {
	admins *store.AdminStore
	clock  clockwork.Clock
}

func NewAdminService(admins *store.AdminStore, clock clockwork.Clock) *AdminService {
	return &AdminService{admins: admins, clock: clock}
}

func (s *AdminService) Register(ctx context.Context, username, password string) (*league.Admin, error) {
	existing, err := s.admins.GetAdminByUsername(ctx, username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, league.NewError(league.KindValidation, "admin username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &league.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*league.Admin, error) {
	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindForbidden, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, league.NewError(league.KindForbidden, "invalid credentials")
	}
	return admin, nil
}

// EnsureDefaultAdmin bootstraps a first admin account on an empty database so
// the approval flow is reachable. The password must be rotated immediately.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	count, err := s.admins.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.Register(ctx, username, password)
	return err
}
