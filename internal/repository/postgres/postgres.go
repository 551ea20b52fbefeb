package postgres

import (
	"database/sql"

	"tradelink-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.OrganizationRepository
	repository.VerificationCaseRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		OrganizationRepository:     NewOrganizationRepository(db),
		VerificationCaseRepository: NewVerificationCaseRepository(db),
	}
}
