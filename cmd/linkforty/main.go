// Command linkforty exercises the attribution SDK from a terminal: parse and
// resolve links, report installs and replay URL streams.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linkforty/go-linkforty/adapters/console"
	"github.com/linkforty/go-linkforty/pkg/commands"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/install"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/links"
)

const usage = `usage: linkforty <command> [flags]

commands:
  parse <url>     extract link data locally without contacting the server
  resolve <url>   handle a URL the way an incoming app link is handled
  install         run first-launch attribution (-force to report again)
  listen          read URLs from stdin, one per line, and print deliveries
  status          print the stored install id and deferred link data
  clear           remove stored install state
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	name, rest := args[0], args[1:]

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags globalFlags
	fs.StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&flags.envFile, "env", "", "path to a .env file")
	fs.StringVar(&flags.baseURL, "base-url", "", "override the configured base URL")
	fs.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	fs.StringVar(&flags.screen, "screen", "", "screen resolution reported in fingerprints, e.g. 1920x1080")
	force := fs.Bool("force", false, "install: report even when this is not the first launch")
	metricsAddr := fs.String("metrics-addr", "", "listen: serve Prometheus metrics on this address")

	switch name {
	case "parse", "resolve", "install", "listen", "status", "clear":
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return 2
	}
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	if name == "parse" {
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "parse: expected exactly one URL")
			return 2
		}
		cfg, err := loadConfig(flags)
		if err != nil {
			fmt.Fprintf(stderr, "parse: %v\n", err)
			return 1
		}
		return emit(stdout, stderr, links.ExtractLocal(fs.Arg(0), cfg.BaseURL))
	}

	a, err := bootstrap(ctx, flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	defer a.Close()

	switch name {
	case "resolve":
		err = runResolve(ctx, a, fs.Args(), stdout)
	case "install":
		err = runInstall(ctx, a, *force, stdout)
	case "listen":
		err = runListen(ctx, a, stdin, stdout, *metricsAddr)
	case "status":
		err = runStatus(ctx, a, stdout)
	case "clear":
		err = a.module.Commands().ClearData.Execute(ctx, commands.ClearData{})
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func runResolve(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("expected exactly one URL")
	}
	msg := commands.HandleURL{URL: args[0], Result: &domain.LinkEvent{}}
	if err := a.module.Commands().HandleURL.Execute(ctx, msg); err != nil {
		return err
	}
	return encode(stdout, msg.Result)
}

func runInstall(ctx context.Context, a *app, force bool, stdout io.Writer) error {
	msg := commands.ReportInstall{Force: force, Result: &install.LaunchResult{}}
	if err := a.module.Commands().ReportInstall.Execute(ctx, msg); err != nil {
		return err
	}
	return encode(stdout, msg.Result)
}

func runStatus(ctx context.Context, a *app, stdout io.Writer) error {
	id, err := a.module.InstallID(ctx)
	if err != nil {
		return err
	}
	data, err := a.module.InstallData(ctx)
	if err != nil {
		return err
	}
	return encode(stdout, map[string]any{
		"installId":   id,
		"installData": data,
	})
}

func runListen(ctx context.Context, a *app, stdin io.Reader, stdout io.Writer, metricsAddr string) error {
	out := console.New(a.logger, console.WithWriter(stdout))
	a.module.OnDeepLink(out)

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", logger.Field{Key: "error", Value: err})
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	src := events.NewChannelSource("", 16)
	go func() {
		defer src.Close()
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := src.Push(ctx, line); err != nil {
				return
			}
		}
	}()
	return a.module.Listen(ctx, src)
}

func emit(stdout, stderr io.Writer, v any) int {
	if err := encode(stdout, v); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
