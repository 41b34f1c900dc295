package usecase

import (
	"context"
	"encoding/base64"
	"log/slog"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/totp"
)

const qrCodeSize = 256

type ExportCredentialInput struct {
	ID int64 `validate:"required,gt=0"`
}

type ExportCredentialOutput struct {
	URI    string
	QRCode string // base64-encoded PNG, ready for a data: URL
}

// ExportCredential rebuilds the otpauth:// URI for one credential so it
// can be moved to another authenticator, plus a QR rendering of it.
func (s *Usecase) ExportCredential(ctx context.Context, in ExportCredentialInput) (*ExportCredentialOutput, error) {
	ctx, span := s.startSpan(ctx, "ExportCredential")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ensureLoaded(ctx, ownerID); err != nil {
		return nil, err
	}

	cred, ok := s.registry.Credential(ownerID, in.ID)
	if !ok {
		return nil, goerror.NewBusiness("credential not found", goerror.CodeNotFound)
	}
	if cred.Secret == "" {
		return nil, goerror.NewBusiness("credential cannot be exported", goerror.CodeConflict)
	}

	uri := totp.BuildURI(totp.Provision{
		Issuer:      cred.Issuer,
		AccountName: cred.Name,
		Secret:      cred.Secret,
		Algorithm:   cred.Algorithm,
		Digits:      cred.Digits,
		Period:      cred.Period,
	})

	png, err := qrcode.Encode(uri, qrcode.Medium, qrCodeSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode export qr",
			"credential_id", in.ID, "owner_id", ownerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ExportCredentialOutput{
		URI:    uri,
		QRCode: base64.StdEncoding.EncodeToString(png),
	}, nil
}
