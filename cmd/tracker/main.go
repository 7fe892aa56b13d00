package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/KirkDiggler/beyond-tracker/internal/clients/beyond"
	"github.com/KirkDiggler/beyond-tracker/internal/config"
	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	"github.com/KirkDiggler/beyond-tracker/internal/notify/discord"
	"github.com/KirkDiggler/beyond-tracker/internal/repositories/changelog"
	"github.com/KirkDiggler/beyond-tracker/internal/repositories/snapshots"
	"github.com/KirkDiggler/beyond-tracker/internal/services/tracker"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Tracking %d character(s), schedule %q", len(cfg.Tracker.CharacterIDs), cfg.Tracker.Schedule)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Failed to close Redis client: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
	}
	cancel()
	log.Printf("Connected to Redis at %s", cfg.Redis.Addr)

	snapshotRepo, err := snapshots.NewRedis(&snapshots.RedisConfig{Client: redisClient})
	if err != nil {
		log.Fatalf("Failed to create snapshot repository: %v", err)
	}

	changeLog, err := changelog.NewSQLite(&changelog.SQLiteConfig{Path: cfg.Tracker.ChangelogDB})
	if err != nil {
		log.Fatalf("Failed to open change log: %v", err)
	}

	client, err := beyond.New(&beyond.Config{
		BaseURL:  cfg.Beyond.BaseURL,
		RetryMax: cfg.Beyond.RetryMax,
		Timeout:  time.Duration(cfg.Beyond.TimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to create Beyond client: %v", err)
	}

	detector, err := buildDetector(cfg)
	if err != nil {
		log.Fatalf("Failed to build detection service: %v", err)
	}

	var notifier discord.Notifier
	if cfg.Discord.WebhookID != "" && cfg.Discord.WebhookToken != "" {
		// webhook execution needs no gateway connection
		session, err := discordgo.New("")
		if err != nil {
			log.Fatalf("Failed to create Discord session: %v", err)
		}
		notifier, err = discord.New(&discord.Config{
			Session:      session,
			WebhookID:    cfg.Discord.WebhookID,
			WebhookToken: cfg.Discord.WebhookToken,
			Username:     cfg.Discord.Username,
		})
		if err != nil {
			log.Fatalf("Failed to create Discord notifier: %v", err)
		}
	} else {
		log.Println("Discord webhook not configured, notifications disabled")
	}

	svc, err := tracker.NewService(&tracker.ServiceConfig{
		Client:       client,
		SnapshotRepo: snapshotRepo,
		ChangeLog:    changeLog,
		Detector:     detector,
		Notifier:     notifier,
		CharacterIDs: cfg.Tracker.CharacterIDs,
	})
	if err != nil {
		log.Fatalf("Failed to create tracker service: %v", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// one run at startup, then on schedule
	if err := svc.RefreshAll(runCtx); err != nil {
		log.Printf("Initial refresh finished with errors: %v", err)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Tracker.Schedule, func() {
		if err := svc.RefreshAll(runCtx); err != nil {
			log.Printf("Scheduled refresh finished with errors: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid schedule %q: %v", cfg.Tracker.Schedule, err)
	}
	scheduler.Start()
	log.Println("Tracker is running. Press CTRL+C to exit.")

	<-runCtx.Done()
	log.Println("Shutting down...")
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
}

func buildDetector(cfg *config.Config) (detect.Service, error) {
	rules, err := detect.LoadPatternTableFile(cfg.Patterns.FilePath)
	if err != nil {
		return nil, err
	}

	table := detect.NewPatternTable(&detect.PatternTableConfig{
		Rules:            rules,
		AutoDiscover:     cfg.Patterns.AutoDiscover,
		DiscoveryDefault: character.ParsePriority(cfg.Patterns.DiscoveryDefault),
		FilePath:         cfg.Patterns.FilePath,
	})

	resolver := detect.NewResolver(&detect.ResolverConfig{
		Table: table,
		Thresholds: map[detect.NotificationTarget]character.Priority{
			detect.TargetDiscord:   character.ParsePriority(cfg.Patterns.DiscordMin),
			detect.TargetChangelog: character.ParsePriority(cfg.Patterns.ChangelogMin),
		},
	})

	return detect.NewService(&detect.ServiceConfig{Resolver: resolver}), nil
}
