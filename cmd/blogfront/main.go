package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eringen/blogfront"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: blogfront init <dir>")
			os.Exit(1)
		}
		if err := runInit(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("blogfront %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := flags.String("config", blogfront.EnvOr("BLOGFRONT_CONFIG", ""), "path to the YAML config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := blogfront.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := blogfront.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := blogfront.New(cfg, blogfront.DefaultViews(cfg),
		blogfront.WithLogger(logger),
		blogfront.WithVersion(version),
	)
	defer app.Close()

	return app.Start(ctx)
}

func printUsage() {
	fmt.Println(`blogfront - A blog front-end built with Go, Echo, and templ

Usage:
  blogfront <command> [arguments]

Commands:
  serve [-config path]   Serve the site (config also read from BLOGFRONT_CONFIG)
  init <dir>             Write a starter config.yaml and .env.example into dir
  version                Print the blogfront version
  help                   Show this help message

Examples:
  blogfront init mysite
  blogfront serve -config mysite/config.yaml`)
}
