package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/config"
	"github.com/calock/ibmidbg/internal/mcp"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/internal/version"
	"github.com/calock/ibmidbg/pkg/types"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	host := flag.String("host", "", "IBM i host to connect to")
	user := flag.String("user", "", "User profile to connect as")
	libraries := flag.String("libraries", "", "Default library list, space-separated")
	debugLog := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	help := flag.Bool("help", false, "Show help and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("ibmidbg version %s\n", version.Version)
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	logger := newLogger(*debugLog)

	if *host == "" || *user == "" {
		logger.Fatal().Msg("both -host and -user are required")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	conn := types.Connection{
		Name:           *host,
		Host:           *host,
		User:           *user,
		DeploymentMode: cfg.DeploymentMode(),
	}
	if *libraries != "" {
		conn.DefaultLibraries = strings.Fields(*libraries)
	}

	// Create and start the server
	server := mcp.NewServer(cfg, conn, remote.NewSSHHost(*user, *host), logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info().Msg("shutting down")
		server.Close()
		os.Exit(0)
	}()

	// Start serving via stdio
	logger.Info().Str("host", conn.Host).Str("user", conn.User).Msg("ibmidbg server starting")
	if err := server.ServeStdio(); err != nil {
		server.Close()
		logger.Fatal().Err(err).Msg("server error")
	}
	server.Close()
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	// Stdout carries the MCP protocol; logs go to stderr.
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func printHelp() {
	fmt.Println(`ibmidbg: IBM i Debug Bridge

An MCP server that orchestrates debug sessions against the IBM i debug
service: batch job submission and service entry points, with certificate
provisioning, version gating, and message-wait job cleanup.

USAGE:
  ibmidbg -host <system> -user <profile> [options]

OPTIONS:
  -config <path>     Path to a JSON configuration file
  -host <system>     IBM i host to connect to (required)
  -user <profile>    User profile to connect as (required)
  -libraries <list>  Default library list, space-separated
  -debug             Enable debug logging
  -version           Show version and exit
  -help              Show this help

The server speaks MCP over stdio. Remote access uses the system ssh and
scp binaries with BatchMode; configure key authentication beforehand.`)
}
