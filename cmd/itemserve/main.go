// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the item completion server and its CLI.

itemserve answers prefix completions over a compact binary trie of item
names. A query is matched character by character, preferring the exact
character and falling back to the other ASCII case, and at most 100 entries
are returned in dictionary order.

# Usage

Start the IPC server with the default dictionary:

	itemserve

Serve a compressed dictionary from object storage over HTTP as well:

	itemserve -data s3://assets/items.bin.sz -http

Run in CLI mode for interactive testing:

	itemserve -c -limit 10 -prmin 2

# Dictionaries

-data accepts a filesystem path, an http(s) URL or s3://bucket/key. The
format follows the extension: .bin for a raw trie, .sz for a snappy
compressed trie and .txt for a word list that is built on load. Dictionaries
are produced with trietool.

The dictionary loads in the background. The IPC server announces itself
immediately and holds completion requests until loading finishes.

# Configuration

Runtime configuration is a TOML file created with defaults on first run:

	[server]
	max_limit = 100
	min_prefix = 0
	max_prefix = 60
	suppress_exact = true

	[dict]
	source = "data/items.bin"
	cache_size = 512

	[http]
	enabled = false
	address = "127.0.0.1"
	port = 8080

See pkg/server for the IPC protocol and the HTTP routes.

# Command Line Flags

	-data string
	    Dictionary file, URL or s3://bucket/key (default from config)
	-config string
	    Path to a config file
	-rebuild-config
	    Overwrite the default config file with built-in defaults
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-http
	    Serve HTTP in addition to IPC
	-limit int
	    Number of suggestions to return in CLI mode
	-prmin int
	    Minimum prefix length for suggestions in CLI mode
	-prmax int
	    Maximum prefix length for suggestions in CLI mode
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bastiangx/itemserve/internal/cli"
	"github.com/bastiangx/itemserve/internal/logger"
	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/config"
	"github.com/bastiangx/itemserve/pkg/dictionary"
	"github.com/bastiangx/itemserve/pkg/server"
	"github.com/bastiangx/itemserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "itemserve"
	gh      = "https://github.com/bastiangx/itemserve"
)

// main wires config, dictionary loading and the selected mode.
// It does not implement logic for them and only manages the flow.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataSource := flag.String("data", "", "Dictionary file, URL or s3://bucket/key (default from config)")
	configPath := flag.String("config", "", "Path to a config file")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config file with built-in defaults")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpMode := flag.Bool("http", false, "Serve HTTP in addition to IPC")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (0 <= n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		log.Printf("Rebuilt config at %s", path)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedConfig))

	source := cfg.Dict.Source
	if *dataSource != "" {
		source = *dataSource
	}
	if pathResolver, err := utils.NewPathResolver(); err == nil {
		if *debugMode {
			for k, v := range pathResolver.GetRuntimeInfo() {
				log.Debug("runtime", k, v)
			}
		}
		source = pathResolver.ResolveDataFile(source)
	} else {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}

	src, err := dictionary.ParseSource(source, cfg.S3Options())
	if err != nil {
		log.Fatalf("Invalid dictionary source %q: %v", source, err)
	}
	log.Debugf("Using dictionary at: %s", src.Name())

	loader := dictionary.NewLoader(src)
	completer := suggest.NewLazyCompleter(loader, suggest.Options{
		MaxLimit:      cfg.Server.MaxLimit,
		SuppressExact: cfg.Server.SuppressExact,
		CacheSize:     cfg.Dict.CacheSize,
	})
	completer.InitializeContext(ctx)

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit)

		inputHandler := cli.NewInputHandler(completer, *minPrefix, *maxPrefix, *limit, os.Stdin, os.Stdout)
		if err := inputHandler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	metrics := server.NewMetrics()

	if *httpMode || cfg.HTTP.Enabled {
		addr := net.JoinHostPort(cfg.HTTP.Address, strconv.Itoa(cfg.HTTP.Port))
		httpServer := server.NewHTTPServer(completer, cfg.Server, metrics)
		go func() {
			if err := httpServer.ListenAndServe(ctx, addr); err != nil {
				log.Errorf("HTTP server stopped: %v", err)
			}
		}()
	}

	log.Debug("spawning IPC")
	showStartupInfo(src.Name())

	srv := server.NewServer(completer, cfg.Server, os.Stdin, os.Stdout).WithMetrics(metrics)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Printf("[ %s ] item name completions", AppName)
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(source string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintf(os.Stderr, " %s \n", AppName)
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s )", source)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")
}
