package app

import (
	"log/slog"
	"os"

	"github.com/authvault/authvault/internal/vault"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.vault.enabled") {
		mod, err := vault.New(vault.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Sealer:      a.sealer,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
		})
		if err != nil {
			slog.Error("failed to init module vault", "error", err)
			os.Exit(1)
		}
		a.vault = mod
	}
}
