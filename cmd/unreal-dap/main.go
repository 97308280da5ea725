// unreal-dap is the debugger client: it connects to the interface service
// loaded into the game and serves a Debug Adapter Protocol session to the
// editor over stdio or a TCP port.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/uscript-tools/unreal-dap/internal/adapter"
	"github.com/uscript-tools/unreal-dap/internal/client"
	"github.com/uscript-tools/unreal-dap/internal/config"
	"github.com/uscript-tools/unreal-dap/internal/debugger"
	"github.com/uscript-tools/unreal-dap/internal/version"
)

func main() {
	opts := config.DefaultOptions()

	root := &cobra.Command{
		Use:     "unreal-dap",
		Short:   "Debug Adapter Protocol bridge for the UnrealScript debugger",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), opts)
		},
	}

	root.Flags().IntVar(&opts.DebugPort, "debug_port", opts.DebugPort,
		"TCP port for the DAP endpoint; 0 uses stdio")
	root.Flags().StringVar(&opts.InterfaceAddr, "interface_addr", opts.InterfaceAddr,
		"address of the in-game debugger interface")
	root.Flags().StringVar(&opts.LogPath, "log", opts.LogPath,
		"write a protocol log to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts config.Options) error {
	log, err := buildLogger(opts.LogPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	sugar := log.Sugar()
	sugar.Infow("unreal-dap starting", "version", version.Version,
		"interface", opts.InterfaceAddr, "debug_port", opts.DebugPort)

	dbg := debugger.New(sugar)

	// The interface connection comes first: without the game there is
	// nothing to debug, and failing now gives the editor a clean error.
	conn, err := client.Dial(ctx, opts.InterfaceAddr, dbg, sugar)
	if err != nil {
		return err
	}

	transport, err := openTransport(opts, sugar)
	if err != nil {
		conn.Close()
		return err
	}

	session := adapter.NewSession(transport, dbg, conn, sugar)
	conn.SetSink(session)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(conn.Run)
	g.Go(session.Run)
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-session.Done():
		}
		conn.Close()
		session.Terminate()
		return nil
	})
	return g.Wait()
}

// openTransport binds the DAP endpoint: stdio by default, or a TCP port
// accepting a single editor connection when --debug_port is given.
func openTransport(opts config.Options, log *zap.SugaredLogger) (*adapter.Transport, error) {
	if opts.DebugPort == 0 {
		return adapter.NewStdioTransport(os.Stdin, os.Stdout), nil
	}

	addr := fmt.Sprintf("127.0.0.1:%d", opts.DebugPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for the editor on %s: %w", addr, err)
	}
	defer l.Close()

	log.Infow("waiting for editor connection", "addr", addr)
	editorConn, err := l.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting editor connection: %w", err)
	}
	return adapter.NewConnTransport(editorConn), nil
}

// buildLogger writes to the named file, or swallows everything: stdout may
// carry the DAP stream and must stay clean.
func buildLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return logger, nil
}
