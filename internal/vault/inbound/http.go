package inbound

import (
	"context"

	"github.com/authvault/authvault/internal/pkg/router"
	"github.com/authvault/authvault/internal/vault/registry"
	"github.com/authvault/authvault/internal/vault/usecase"
)

type uc interface {
	AddCredential(ctx context.Context, in usecase.AddCredentialInput) (*usecase.AddCredentialOutput, error)
	ImportCredential(ctx context.Context, in usecase.ImportCredentialInput) (*usecase.AddCredentialOutput, error)
	ListCredentials(ctx context.Context, in usecase.ListCredentialsInput) (*usecase.ListCredentialsOutput, error)
	UpdateCredential(ctx context.Context, in usecase.UpdateCredentialInput) error
	RemoveCredential(ctx context.Context, in usecase.RemoveCredentialInput) error

	ViewCode(ctx context.Context, in usecase.AccessCodeInput) (*usecase.AccessCodeOutput, error)
	CopyCode(ctx context.Context, in usecase.AccessCodeInput) (*usecase.AccessCodeOutput, error)
	ExportCredential(ctx context.Context, in usecase.ExportCredentialInput) (*usecase.ExportCredentialOutput, error)

	StreamCodes(ctx context.Context) (<-chan registry.Snapshot, error)

	ConsumeUserLogout(ctx context.Context, in usecase.ConsumeUserLogoutInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Credential Management (need authenticated)
	r.GET("/api/v1/vault/credentials", end.ListCredentials)
	r.POST("/api/v1/vault/credentials", end.AddCredential)
	r.POST("/api/v1/vault/credentials/import", end.ImportCredential)
	r.PUT("/api/v1/vault/credentials/:id", end.UpdateCredential)
	r.DELETE("/api/v1/vault/credentials/:id", end.RemoveCredential)

	// Code Access (need authenticated)
	r.GET("/api/v1/vault/credentials/:id/code", end.ViewCode)
	r.POST("/api/v1/vault/credentials/:id/code/copy", end.CopyCode)
	r.GET("/api/v1/vault/credentials/:id/export", end.ExportCredential)

	// Live code stream (need authenticated)
	r.GETRaw("/api/v1/vault/stream", end.streamHandler())
}
