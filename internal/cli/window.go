package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	webview "github.com/webview/webview_go"

	bridgeview "github.com/arko-chat/geobridge/internal/webview"
)

var windowDebug bool

func init() {
	rootCmd.AddCommand(windowCmd)
	windowCmd.Flags().BoolVar(&windowDebug, "debug", false, "Enable webview developer tools")
}

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Open the console in a desktop webview",
	Long:  "Serves the console on a loopback port and opens it in a native window.\nThe page reaches the bridge through the __geobridgeCall binding.",
	RunE:  runWindow,
}

func runWindow(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	a, err := e.newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	addr := fmt.Sprintf("http://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
	e.log.Info("server starting", "addr", addr)

	srv := &http.Server{Handler: a.Handler}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("server error", "err", err)
		}
	}()
	defer srv.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if w := e.watchConfig(); w != nil {
		go w.Run(ctx)
	}

	w := webview.New(windowDebug)
	defer w.Destroy()

	host := bridgeview.New(ctx, w, a.Dispatcher, e.log)
	if err := host.Bind(); err != nil {
		return err
	}
	a.Relay.Attach(host)
	// runs before Destroy; nothing may be evaluated into a dead view
	defer a.Relay.Detach()

	w.SetTitle("Geobridge")
	w.SetSize(1040, 768, webview.HintMin)
	w.SetSize(1280, 800, webview.HintMax)
	w.Navigate(addr)
	w.Run()

	e.log.Info("window closed, shutting down")
	return nil
}
