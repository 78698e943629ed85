package main

import (
	"flag"
	"os"
	"time"

	"github.com/yourusername/marvin/internal/bot"
	"github.com/yourusername/marvin/internal/config"
	"github.com/yourusername/marvin/internal/database"
	"github.com/yourusername/marvin/internal/fetch"
	"github.com/yourusername/marvin/internal/irc"
	"github.com/yourusername/marvin/internal/maintenance"
	"github.com/yourusername/marvin/internal/output"
	"github.com/yourusername/marvin/internal/shutdown"
)

const (
	reconnectDelay      = 10 * time.Second
	maintenanceInterval = 24 * time.Hour
	shutdownTimeout     = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config/bot.toml", "Path to the TOML configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := output.NewColorLogger(*verbose)
	logger.Info("Marvin IRC Bot - Starting...")

	if _, err := config.LoadOrCreate(*configPath); err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	rt, err := config.Build(*configPath)
	if err != nil {
		logger.Error("Failed to compile configuration: %v", err)
		os.Exit(1)
	}
	logger.Success("Configuration loaded")

	db, err := database.New(rt.URLLogDB)
	if err != nil {
		logger.Error("Failed to initialize URL history database: %v", err)
		os.Exit(1)
	}
	logger.Success("URL history database initialized")

	scheduler := maintenance.New(db.Conn(), logger, maintenanceInterval, rt.URLLogRetention)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start maintenance scheduler: %v", err)
		_ = db.Close()
		os.Exit(1)
	}

	client := irc.NewClient(rt.Server, rt.Channel, logger)
	fetcher := fetch.New()

	b := bot.New(rt, client, db, fetcher, logger, *configPath)
	bot.RegisterCoreHandlers(b)
	irc.BindDispatcher(client, b, logger)
	b.StartQueues()

	shutdownHandler := shutdown.NewHandler(logger, shutdownTimeout)
	shutdownHandler.Register(func() error {
		return client.Quit("Brain the size of a planet, and they turn me off.")
	})
	shutdownHandler.Register(func() error {
		b.StopQueues()
		return nil
	})
	shutdownHandler.Register(func() error {
		return scheduler.Stop()
	})
	shutdownHandler.Register(func() error {
		logger.Info("Closing URL history database...")
		return db.Close()
	})
	shutdownHandler.Register(func() error {
		logger.Success("Marvin has shut down. Goodbye!")
		return nil
	})
	go shutdownHandler.Wait()

	// Connection loop: a dropped connection is redialed after a fixed
	// delay until shutdown is requested.
	go func() {
		for {
			if err := client.Connect(); err != nil {
				logger.Error("Failed to connect: %v", err)
			} else if err := client.Run(); err != nil {
				logger.Error("Connection lost: %v", err)
			}
			_ = client.Disconnect()

			select {
			case <-shutdownHandler.Done():
				return
			case <-time.After(reconnectDelay):
				logger.Info("Reconnecting...")
			}
		}
	}()

	<-shutdownHandler.Done()
}
