package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toqueteos/webbrowser"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

var (
	serveAddr  string
	serveOpen  bool
	serveQuiet bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the console page in the default browser")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "Disable request logging")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bridge over HTTP and websockets",
	Long:  "Runs the bridge as a local server. POST /api/{command} waits for the settlement;\n/ws carries calls and pushes tracking events to every connected page.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		e.cfg.Addr = serveAddr
	}

	a, err := e.newApp(serveQuiet)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Relay.Attach(a.Hub)

	ln, err := net.Listen("tcp", e.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", e.cfg.Addr, err)
	}
	url := "http://" + ln.Addr().String()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Handler: a.Handler}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		e.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if w := e.watchConfig(); w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}

	e.log.Info("bridge listening", "url", url, "commands", len(a.Dispatcher.Commands()))
	if serveOpen {
		if err := webbrowser.Open(url); err != nil {
			e.log.Warn("open browser", "err", err)
		}
	}

	return g.Wait()
}
