// Package supervisor wires the four pipeline services together and runs
// them under a fail-fast errgroup, per spec.md §5: any service task
// returning is treated as fatal except when the whole group was canceled by
// an interrupt, which exits cleanly.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/vnetserg/mafia/internal/chat"
	"github.com/vnetserg/mafia/internal/game"
	"github.com/vnetserg/mafia/internal/locale"
	"github.com/vnetserg/mafia/internal/login"
	"github.com/vnetserg/mafia/internal/socket"
)

// Config carries the handful of startup options the CLI exposes.
type Config struct {
	Addr   string
	Locale locale.Locale
}

// Run builds the Socket -> Login -> Chat -> Game pipeline and runs it to
// completion. It returns nil on a clean interrupt-driven shutdown, or the
// first error any service returned otherwise.
func Run(ctx context.Context, cfg Config) error {
	gameSvc := game.New()
	chatSvc := chat.New(gameSvc.Events(), cfg.Locale)
	loginSvc := login.New(chatSvc.UserEvents(), cfg.Locale)
	socketSvc := socket.New(cfg.Addr, loginSvc.SocketEvents())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return socketSvc.Run(gctx) })
	g.Go(func() error { return loginSvc.Run(gctx) })
	g.Go(func() error { return chatSvc.Run(gctx) })
	g.Go(func() error { return gameSvc.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}
