// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/spotify-etl/internal/shared"
	"github.com/urfave/cli/v3"
)

// runCommand performs a single extraction from the terminal.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Fetch the configured playlist and upload the raw JSON once",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Run,
	}
}

// lambdaCommand hands control to the AWS Lambda runtime.
func lambdaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "lambda",
		Usage:  "Start the AWS Lambda handler",
		Action: r.Lambda,
	}
}

// playlistIDCommand prints the identifier derived from a sharing URL.
func playlistIDCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist-id",
		Usage: "Print the playlist ID for a sharing URL (defaults to the configured playlist)",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Action: r.PlaylistID,
	}
}

// keyCommand prints the object key a run would use right now.
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Print the object key an upload would use now",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "layout",
				Usage: "Timestamp layout: " + shared.LayoutISO8601 + " or " + shared.LayoutLegacy + " (defaults to storage.key_layout)",
			},
		},
		Action: r.Key,
	}
}

// configCommand handles configuration files.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write",
						Value:   defaultConfigPath,
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
