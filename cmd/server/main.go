package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/achievement-feed/auth"
	"github.com/jrsteele09/achievement-feed/feed"
	followsql "github.com/jrsteele09/achievement-feed/follows/sqlrepo"
	"github.com/jrsteele09/achievement-feed/internal/config"
	"github.com/jrsteele09/achievement-feed/internal/database"
	"github.com/jrsteele09/achievement-feed/internal/logging"
	"github.com/jrsteele09/achievement-feed/server"
	"github.com/jrsteele09/achievement-feed/token"
	"github.com/jrsteele09/achievement-feed/upstream"
	"github.com/jrsteele09/achievement-feed/users"
	usersql "github.com/jrsteele09/achievement-feed/users/sqlrepo"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx := context.Background()

	db, err := database.Open(ctx, c.GetDatabaseDriver(), c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	deps, cleanup, err := wire(ctx, c, db)
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	if err := waitForStopSignal(serveErr); err != nil {
		return err
	}
	return shutdown(httpServer)
}

// wire builds the application graph from configuration.
func wire(ctx context.Context, c config.Config, db *database.DB) (server.Deps, func(), error) {
	cleanup := func() {}

	keyring, err := token.ParseKeyring(c.GetSigningSecrets())
	if err != nil {
		return server.Deps{}, cleanup, err
	}
	codec, err := token.NewSessionCodec(keyring, token.WithMaxAge(c.GetMaxSessionAge()))
	if err != nil {
		return server.Deps{}, cleanup, err
	}
	log.Info().Strs("key_ids", keyring.KeyIDs()).Msg("session signing keys loaded")

	tokenURL := c.GetTokenURL()
	if issuer := c.GetIssuer(); issuer != "" {
		if tokenURL, err = upstream.DiscoverTokenURL(ctx, issuer); err != nil {
			return server.Deps{}, cleanup, err
		}
		log.Info().Str("issuer", issuer).Str("token_url", tokenURL).Msg("discovered upstream token endpoint")
	}

	tokenClient, err := upstream.NewTokenClient(c.GetClientID(), c.GetClientSecret(), upstream.WithTokenURL(tokenURL))
	if err != nil {
		return server.Deps{}, cleanup, err
	}
	var exchanger auth.TokenExchanger = tokenClient

	if redisURL := c.GetRedisURL(); redisURL != "" {
		redisClient, err := upstream.NewRedisClient(ctx, redisURL)
		if err != nil {
			return server.Deps{}, cleanup, err
		}
		cleanup = func() { _ = redisClient.Close() }

		cached, err := upstream.NewCachedExchanger(tokenClient, redisClient)
		if err != nil {
			return server.Deps{}, cleanup, err
		}
		exchanger = cached
		log.Info().Msg("upstream token cache enabled")
	}

	provider, err := users.NewProvider(usersql.NewUserRepo(db))
	if err != nil {
		return server.Deps{}, cleanup, err
	}
	sessions, err := auth.NewSessionService(provider, exchanger, codec)
	if err != nil {
		return server.Deps{}, cleanup, err
	}
	gate, err := auth.NewGate(codec)
	if err != nil {
		return server.Deps{}, cleanup, err
	}

	characters, err := upstream.NewCharacterClient(c.GetAPIURL(),
		upstream.WithNamespace(c.GetNamespace()),
		upstream.WithLocale(c.GetLocale()),
	)
	if err != nil {
		return server.Deps{}, cleanup, err
	}

	followRepo := followsql.NewFollowRepo(db)
	feedBuilder, err := feed.NewBuilder(followRepo, characters, feed.WithLimit(c.GetFeedLimit()))
	if err != nil {
		return server.Deps{}, cleanup, err
	}

	return server.Deps{
		Sessions:   sessions,
		Gate:       gate,
		Characters: characters,
		Follows:    followRepo,
		Feed:       feedBuilder,
		Health:     db,
	}, cleanup, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal(serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
