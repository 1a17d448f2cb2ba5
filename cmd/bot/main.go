package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/leonaffi-byte/amazon-photo-bot/config"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/delivery/http"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/delivery/telegram"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/infrastructure/amazon"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/infrastructure/shortener"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/infrastructure/vision"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Amazon Photo Bot")
	log.Printf("Vision model: %s (%s)", cfg.Vision.Model, cfg.Vision.BaseURL)
	log.Printf("Search host: %s (country: %s)", cfg.Search.Host, cfg.Search.Country)
	log.Printf("Results: %d per page, %d max", cfg.Bot.ResultsPerPage, cfg.Bot.MaxResults)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infrastructure
	visionClient := vision.NewClient(cfg.Vision.APIKey, cfg.Vision.BaseURL, cfg.Vision.Model, cfg.Vision.Timeout)
	searchClient := amazon.NewClient(cfg.Search.RapidAPIKey, cfg.Search.Host, cfg.Search.Country, cfg.Search.Timeout)

	// Link shortening is optional; without it buttons carry full URLs
	var links domain.LinkShortener = shortener.Passthrough{}
	if cfg.Shortener.Enabled {
		svc := shortener.NewService(cfg.Shortener.BaseURL)
		links = svc

		handler := http.NewHandler(svc)
		router := http.SetupRouter(handler, cfg.Telegram.Debug)
		addr := fmt.Sprintf(":%s", cfg.Shortener.Port)
		go func() {
			log.Printf("URL shortener listening on %s (base: %s)", addr, cfg.Shortener.BaseURL)
			if err := router.Run(addr); err != nil {
				log.Fatalf("Failed to start shortener server: %v", err)
			}
		}()
	}

	// Usecase layer
	searcher := usecase.NewSearchService(searchClient, cfg.Bot.MaxResults)
	sessions := usecase.NewSessionStore(cfg.Bot.ResultsPerPage)

	// Telegram delivery
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	api.Debug = cfg.Telegram.Debug
	log.Printf("Authorized as @%s", api.Self.UserName)

	bot := telegram.NewBot(api, visionClient, searcher, sessions, links, telegram.Options{
		FreeDeliveryThreshold: cfg.Bot.FreeDeliveryThreshold,
		Marketplace:           cfg.Search.Marketplace,
		AssociateTag:          cfg.Search.AssociateTag,
	})

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	log.Printf("Listening for updates")
	bot.Run(ctx, updates)

	log.Printf("Shutting down")
	api.StopReceivingUpdates()
}

func init() {
	// Local development reads secrets from .env; absence is fine
	_ = godotenv.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
