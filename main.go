// Command slidegame serves and plays the sliding-block puzzle.
//
// Without a subcommand it runs the HTTP server exposing the REST API,
// WebSocket updates and an /mcp endpoint. The puzzle subcommands (generate,
// search, simulate, play, schema) work offline on puzzle documents.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Slide Puzzle Server"
)

// getConfigDirDefault returns the default configuration directory
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

// newApp builds the command tree. Root flags are inherited by subcommands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "slidegame",
		Usage:   AppName,
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Value: getConfigDirDefault(),
				Usage: "Directory containing the puzzle library",
			},
			&cli.StringFlag{
				Name:    "presets",
				Usage:   "YAML file with generator presets",
				Sources: cli.EnvVars("PRESETS_FILE"),
			},
		}, storageFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			generateCommand(),
			searchCommand(),
			simulateCommand(),
			playCommand(),
			schemaCommand(),
		},
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
