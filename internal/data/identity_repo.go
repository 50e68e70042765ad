package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vanvan/vanvan-auth/internal/data/pgxutil"
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/ports"
)

var _ ports.IdentityStore = (*IdentityRepo)(nil)

// IdentityRepo stores identities and driver profiles in PostgreSQL.
// Uniqueness is enforced by the identities and driver_profiles constraints.
type IdentityRepo struct {
	DB *sql.DB
}

// NewIdentityRepo creates a new IdentityRepo.
func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{DB: db}
}

// identityRow is the joined identities/driver_profiles row.
type identityRow struct {
	ID            string    `db:"id"`
	FullName      string    `db:"full_name"`
	NationalID    string    `db:"national_id"`
	Phone         string    `db:"phone"`
	Email         string    `db:"email"`
	SecretHash    string    `db:"secret_hash"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	LicenseNumber *string   `db:"license_number"`
	PayoutKey     *string   `db:"payout_key"`
}

func (r identityRow) toDomain() domainauth.Identity {
	ident := domainauth.Identity{
		ID:         r.ID,
		FullName:   r.FullName,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Email:      r.Email,
		SecretHash: r.SecretHash,
		Role:       domainauth.Role(r.Role),
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.LicenseNumber != nil {
		d := domainauth.DriverProfile{LicenseNumber: *r.LicenseNumber}
		if r.PayoutKey != nil {
			d.PayoutKey = *r.PayoutKey
		}
		ident.Driver = &d
	}
	return ident
}

const selectIdentitySQL = `
	SELECT i.id::text AS id, i.full_name, i.national_id, i.phone, i.email, i.secret_hash,
	       i.role, i.created_at, d.license_number, d.payout_key
	FROM identities i
	LEFT JOIN driver_profiles d ON d.identity_id = i.id`

// FindByEmail returns the identity with the given (normalised) email.
func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (domainauth.Identity, error) {
	if r.DB == nil {
		return domainauth.Identity{}, ErrDBRequired
	}

	var row identityRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, selectIdentitySQL+` WHERE i.email = $1`, domainauth.NormalizeEmail(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[identityRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("find identity by email: %w", err)
	}
	return row.toDomain(), nil
}

// ExistsByNationalIDOrEmail reports whether either value is already registered.
func (r *IdentityRepo) ExistsByNationalIDOrEmail(ctx context.Context, nationalID, email string) (bool, error) {
	if r.DB == nil {
		return false, ErrDBRequired
	}

	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM identities WHERE national_id = $1 OR email = $2)`,
		nationalID, domainauth.NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}
	return exists, nil
}

// Insert stores identity and its driver profile in one transaction.
// A unique violation is returned as domainauth.DuplicateFieldError; the transaction is rolled back.
func (r *IdentityRepo) Insert(ctx context.Context, identity domainauth.Identity) error {
	if r.DB == nil {
		return ErrDBRequired
	}
	if err := identity.CheckExtension(); err != nil {
		return err
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			return insertIdentity(ctx, tx, identity)
		},
	})
	return mapWriteErr("insert identity", err)
}

func insertIdentity(ctx context.Context, tx pgx.Tx, identity domainauth.Identity) error {
	createdAt := identity.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO identities (id, full_name, national_id, phone, email, secret_hash, role, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)`,
		identity.ID,
		identity.FullName,
		identity.NationalID,
		identity.Phone,
		domainauth.NormalizeEmail(identity.Email),
		identity.SecretHash,
		string(identity.Role),
		createdAt,
	); err != nil {
		return err
	}

	if identity.Driver == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO driver_profiles (identity_id, license_number, payout_key)
		VALUES ($1::uuid, $2, $3)`,
		identity.ID,
		identity.Driver.LicenseNumber,
		identity.Driver.PayoutKey,
	)
	return err
}
