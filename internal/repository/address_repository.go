package repository

import (
	"context"
	"fmt"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

const addressColumns = `id, user_id, label, street, city, postal_code, phone, is_default, created_at`

func scanAddress(row pgx.Row, a *model.Address) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.Street,
		&a.City,
		&a.PostalCode,
		&a.Phone,
		&a.IsDefault,
		&a.CreatedAt,
	)
}

// GetByID retrieves an address.
func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	var a model.Address
	if err := scanAddress(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}

// ListByUser retrieves all addresses of a user, default first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		var a model.Address
		if err := scanAddress(rows, &a); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// Create saves a new address. The default-clearing update and the insert run
// in one transaction so at most one default per user exists at rest.
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if address.IsDefault {
		clear := `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`
		if _, err := tx.Exec(ctx, clear, address.UserID); err != nil {
			r.logger.Error().Err(err).Str("user_id", address.UserID.String()).Msg("failed to clear default addresses")
			return fmt.Errorf("failed to clear default addresses: %w", err)
		}
	}

	insert := `
		INSERT INTO addresses (id, user_id, label, street, city, postal_code, phone, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, insert,
		address.ID, address.UserID, address.Label, address.Street,
		address.City, address.PostalCode, address.Phone, address.IsDefault, address.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit address creation")
		return fmt.Errorf("failed to commit address creation: %w", err)
	}

	r.logger.Debug().
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address created")

	return nil
}

// SetDefault marks the given address as the user's default, clearing every
// other default in the same transaction.
func (r *addressRepository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	clear := `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`
	if _, err := tx.Exec(ctx, clear, userID, addressID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear default addresses")
		return false, fmt.Errorf("failed to clear default addresses: %w", err)
	}

	set := `UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`
	tag, err := tx.Exec(ctx, set, addressID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to set default address")
		return false, fmt.Errorf("failed to set default address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// no such address for this user; nothing to commit
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit default address change")
		return false, fmt.Errorf("failed to commit default address change: %w", err)
	}

	return true, nil
}

// Delete removes a user's address.
func (r *addressRepository) Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	query := `DELETE FROM addresses WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, addressID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to delete address")
		return false, fmt.Errorf("failed to delete address: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
