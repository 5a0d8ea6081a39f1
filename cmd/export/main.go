package main

import (
	"context"
	"log"
	"os"

	"github.com/straznik-bot/straznik/internal/automod/history"
	"github.com/straznik-bot/straznik/internal/export"
	"github.com/straznik-bot/straznik/internal/setup"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "export",
		Usage: "Export the moderation history to portable file formats",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "exports",
				Usage:   "Output directory for export files",
			},
			&cli.StringSliceFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   []string{"csv"},
				Usage:   "Export formats to write (csv, sqlite)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := setup.InitializeApp()
			if err != nil {
				return err
			}
			defer app.Cleanup()

			formats := make([]export.Format, 0, len(cmd.StringSlice("format")))
			for _, format := range cmd.StringSlice("format") {
				formats = append(formats, export.Format(format))
			}

			ledger := history.NewLedger(app.Store, app.Logger)
			exporter := export.New(ledger, cmd.String("output"))

			if err := exporter.Export(ctx, formats); err != nil {
				return err
			}

			log.Printf("Moderation history exported to %s", cmd.String("output"))

			return nil
		},
	}

	return app.Run(context.Background(), os.Args)
}
