package store

import (
	"context"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AdminStore struct {
	db *sqlx.DB
}

func NewAdminStore(db *sqlx.DB) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) CreateAdmin(ctx context.Context, admin *league.Admin) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO admins (id, username, password_hash, created_at)
		VALUES (:id, :username, :password_hash, :created_at)`, admin)
	return err
}

func (s *AdminStore) GetAdmin(ctx context.Context, id uuid.UUID) (*league.Admin, error) {
	var admin league.Admin
	err := s.db.GetContext(ctx, &admin, "SELECT * FROM admins WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *AdminStore) GetAdminByUsername(ctx context.Context, username string) (*league.Admin, error) {
	var admin league.Admin
	err := s.db.GetContext(ctx, &admin, "SELECT * FROM admins WHERE username = ?", username)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *AdminStore) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins")
	return count, err
}
