package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
)

// credentialRow mirrors the vault_credentials columns the module reads.
// The secret column holds the AES-GCM ciphertext; decryption happens in
// the usecase layer.
type credentialRow struct {
	ID           int64
	OwnerID      int64
	Name         string
	Issuer       string
	SecretSealed []byte
	Period       int32
	Digits       int32
	Algorithm    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SealedCredential is a stored credential before its secret is opened.
type SealedCredential struct {
	ID           int64
	OwnerID      int64
	Name         string
	Issuer       string
	SecretSealed []byte
	Period       int
	Digits       int
	Algorithm    totp.Algorithm
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r credentialRow) sealed() SealedCredential {
	return SealedCredential{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Issuer:       r.Issuer,
		SecretSealed: r.SecretSealed,
		Period:       int(r.Period),
		Digits:       int(r.Digits),
		Algorithm:    totp.Algorithm(r.Algorithm),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (s *DB) CreateCredential(ctx context.Context, in entity.NewCredential) (id int64, createdAt time.Time, err error) {
	ctx, span := s.startSpan(ctx, "CreateCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO vault_credentials (owner_id, name, issuer, secret, period, digits, algorithm)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = s.conn.QueryRow(ctx, query,
		in.OwnerID, in.Name, in.Issuer, in.SecretSealed,
		in.Period, in.Digits, string(in.Algorithm),
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, time.Time{}, s.mapError(err)
	}

	return id, createdAt, nil
}

func (s *DB) GetCredentialsByOwner(ctx context.Context, ownerID int64) (_ []SealedCredential, err error) {
	ctx, span := s.startSpan(ctx, "GetCredentialsByOwner")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, owner_id, name, issuer, secret, period, digits, algorithm, created_at, updated_at
		FROM vault_credentials
		WHERE owner_id = $1
		ORDER BY name, id`

	rows, err := s.conn.Query(ctx, query, ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]SealedCredential, 0)
	for rows.Next() {
		var r credentialRow
		if err = rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Issuer, &r.SecretSealed,
			&r.Period, &r.Digits, &r.Algorithm, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, r.sealed())
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetCredential(ctx context.Context, id, ownerID int64) (_ *SealedCredential, err error) {
	ctx, span := s.startSpan(ctx, "GetCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, owner_id, name, issuer, secret, period, digits, algorithm, created_at, updated_at
		FROM vault_credentials
		WHERE id = $1 AND owner_id = $2`

	var r credentialRow
	err = s.conn.QueryRow(ctx, query, id, ownerID).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Issuer, &r.SecretSealed,
		&r.Period, &r.Digits, &r.Algorithm, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	sealed := r.sealed()
	return &sealed, nil
}

// UpdateCredential writes only the fields present in the patch. The
// WHERE clause is owner-scoped so a stolen id cannot touch another
// owner's row.
func (s *DB) UpdateCredential(ctx context.Context, id, ownerID int64, patch entity.PatchCredential) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateCredential")
	defer func() { s.endSpan(span, err) }()

	sets := make([]string, 0, 7)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Issuer != nil {
		add("issuer", *patch.Issuer)
	}
	if patch.SecretSealed != nil {
		add("secret", patch.SecretSealed)
	}
	if patch.Period != nil {
		add("period", *patch.Period)
	}
	if patch.Digits != nil {
		add("digits", *patch.Digits)
	}
	if patch.Algorithm != nil {
		add("algorithm", string(*patch.Algorithm))
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = now()")

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		"UPDATE vault_credentials SET %s WHERE id = $%d AND owner_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteCredential(ctx context.Context, id, ownerID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM vault_credentials WHERE id = $1 AND owner_id = $2`

	tag, err := s.conn.Exec(ctx, query, id, ownerID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
