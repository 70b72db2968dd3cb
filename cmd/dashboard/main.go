// Package main provides the CLI entry point for the merchant dashboard client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version information (populated at build time)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	token      string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var opts globalOptions
	fs.StringVar(&opts.configPath, "config", "", "Path to the configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to the configuration file (shorthand)")
	fs.StringVar(&opts.baseURL, "base-url", "", "Override the merchant API base URL")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	fs.StringVar(&opts.token, "token", "", "Bearer token for the merchant API")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: a command is required")
		fmt.Fprintln(stderr, "")
		printUsage(stderr)
		return exitUsage
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	if command == "version" {
		printVersion(stdout)
		return exitOK
	}
	if command == "help" {
		printUsage(stdout)
		return exitOK
	}

	handler, ok := commands[command]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", command)
		printUsage(stderr)
		return exitUsage
	}

	a, err := newApp(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() { _ = a.logger.Sync() }()

	if err := handler(ctx, a, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

type commandFunc func(ctx context.Context, a *app, args []string) error

var commands = map[string]commandFunc{
	"tree":           runTree,
	"category":       runCategory,
	"subcategory":    runSubCategory,
	"subsubcategory": runSubSubCategory,
	"watch":          runWatch,
	"seed":           runSeed,
	"contract":       runContract,
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "dashboard version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Quickcrate Dashboard - merchant category hierarchy client

USAGE:
    dashboard [global options] <command> [command options] [arguments]

GLOBAL OPTIONS:
    -config, -c <path>    Configuration file (default: ./dashboard.{yaml,toml,json})
    -base-url <url>       Override the merchant API base URL
    -token <token>        Bearer token for the merchant API
    -log-level <level>    Override the log level (debug, info, warn, error)

COMMANDS:
    tree                  Load and print the full category hierarchy
    category <op>         Manage categories (list, get, create, update, delete)
    subcategory <op>      Manage subcategories (list, children, get, create, update, delete)
    subsubcategory <op>   Manage sub-subcategories (list, children, get, create, update, delete)
    watch                 Refresh the hierarchy periodically and serve Prometheus metrics
    seed                  Create a random demo hierarchy
    contract              Check the API routes against an OpenAPI document
    version               Show version information

Flags go before positional arguments, e.g. "category update -name Phones <id>".

ENVIRONMENT:
    Every configuration key can be set with a DASHBOARD_ prefix,
    e.g. DASHBOARD_API_BASE_URL, DASHBOARD_AUTH_TOKEN, DASHBOARD_LOG_LEVEL.

EXAMPLES:
    # Print the hierarchy as a table, only active entries matching "phone"
    dashboard tree -search phone -status active

    # Export the hierarchy as YAML
    dashboard tree -output yaml > catalog.yaml

    # Create a category; the slug is derived from the name
    dashboard category create -name "Men's Clothing & Shoes"

    # Rename a subcategory of category c1
    dashboard subcategory update -category-id c1 -name "Mobile Phones" s1

    # Refresh every 30s and expose metrics on :9090
    dashboard watch -interval 30s
`)
}
