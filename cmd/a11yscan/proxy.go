package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/fetch"
	applog "github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/proxy"
	"github.com/spf13/cobra"
)

// NewProxyCmd creates the proxy command.
func NewProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Serve the proxy fetch endpoint",
		Long: `Proxy starts an HTTP server exposing GET ` + proxy.Path + `?url=<url>.

The server fetches the URL and returns {"html", "status", "statusText", "url"}
as JSON. Browser-based tools and "a11yscan audit --source proxy" use it to
read pages that would otherwise be blocked by CORS.

Examples:
  # Listen on the default address
  a11yscan proxy

  # Listen on all interfaces and fetch through a SOCKS5 proxy
  a11yscan proxy --addr :8787 --socks-proxy 127.0.0.1:1080`,
		Args: cobra.NoArgs,
		RunE: runProxyCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultProxyAddr,
		"Address to listen on")
	cmd.Flags().DurationP("timeout", "t", proxy.DefaultUpstreamTimeout,
		"Timeout for each upstream fetch")
	cmd.Flags().String("socks-proxy", "",
		"Route upstream fetches through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent sent upstream")

	return cmd
}

// runProxyCmd executes the proxy command.
func runProxyCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	socks, err := cmd.Flags().GetString("socks-proxy")
	if err != nil {
		return err
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}

	logger := applog.New(cmd.ErrOrStderr(), getVerboseFlag(cmd), getLogFormatFlag(cmd))

	client, err := fetch.NewHTTPClient(fetch.ClientOptions{SOCKSProxy: socks})
	if err != nil {
		return err
	}
	source := fetch.NewDirectSource(client, fetch.WithUserAgent(userAgent))

	server := proxy.NewServer(source,
		proxy.WithUpstreamTimeout(timeout),
		proxy.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Proxy endpoint: http://%s%s?url=<url>\n", addr, proxy.Path)
	return serveProxy(ctx, server, addr)
}

// serveProxy is replaced in tests.
var serveProxy = func(ctx context.Context, server *proxy.Server, addr string) error {
	return server.ListenAndServe(ctx, addr)
}
