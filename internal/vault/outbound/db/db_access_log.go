package db

import (
	"context"

	"github.com/authvault/authvault/internal/vault/entity"
)

// CreateAccessLog appends one immutable audit row. There is no update
// or delete path for this table.
func (s *DB) CreateAccessLog(ctx context.Context, in entity.AccessLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccessLog")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO vault_access_logs
			(id, credential_id, owner_id, access_type, created_at, ip_address, user_agent, device_name, location_data, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.CredentialID, in.OwnerID, in.AccessType.String(), in.CreatedAt,
		in.IPAddress, in.UserAgent, in.DeviceName, in.LocationData, in.Metadata)

	return s.mapError(err)
}
