package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/authvault/authvault/internal/pkg/clock"
	"github.com/authvault/authvault/internal/pkg/config"
	"github.com/authvault/authvault/internal/pkg/goroutine"
	"github.com/authvault/authvault/internal/pkg/idempotency"
	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/jwt"
	"github.com/authvault/authvault/internal/pkg/messaging"
	"github.com/authvault/authvault/internal/pkg/router"
	"github.com/authvault/authvault/internal/pkg/secrecy"
	"github.com/authvault/authvault/internal/pkg/uid"
	"github.com/authvault/authvault/internal/pkg/validator"
	"github.com/authvault/authvault/internal/vault"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT
	sealer    secrecy.Sealer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Messaging

	// modules
	vault *vault.Module

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initSealer()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
