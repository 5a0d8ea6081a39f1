package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/straznik-bot/straznik/internal/bot"
	"github.com/straznik-bot/straznik/internal/setup"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize application with required dependencies
	app, err := setup.InitializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	// Create bot instance
	discordBot, err := bot.New(app)
	if err != nil {
		log.Printf("Failed to create bot: %v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := discordBot.Start(ctx); err != nil {
			return err
		}

		// Block until shutdown is requested
		<-ctx.Done()

		return nil
	})

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	if err := g.Wait(); err != nil {
		log.Printf("Bot stopped with error: %v", err)
	}

	// Cleanly close down the Discord session
	discordBot.Close()
}
