// Debug tool: compare two stored snapshot versions of a character and print
// the detected changes without notifying anyone.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/repositories/snapshots"
)

func main() {
	characterID := flag.Int("character", 0, "character id (required)")
	fromVersion := flag.Int64("from", 0, "older version (default: second newest)")
	toVersion := flag.Int64("to", 0, "newer version (default: newest)")
	flag.Parse()

	if *characterID == 0 {
		log.Fatal("usage: diff-snapshots -character <id> [-from <version>] [-to <version>]")
	}

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			db = parsed
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	repo, err := snapshots.NewRedis(&snapshots.RedisConfig{Client: redisClient})
	if err != nil {
		log.Fatalf("Failed to create snapshot repository: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	from, to := *fromVersion, *toVersion
	if from == 0 || to == 0 {
		versions, err := repo.ListVersions(ctx, *characterID)
		if err != nil {
			log.Fatalf("Failed to list versions: %v", err)
		}
		if len(versions) < 2 {
			log.Fatalf("Character %d has %d snapshot(s), need at least 2", *characterID, len(versions))
		}
		if to == 0 {
			to = versions[len(versions)-1]
		}
		if from == 0 {
			from = versions[len(versions)-2]
		}
	}

	oldSnap, err := repo.GetVersion(ctx, *characterID, from)
	if err != nil {
		log.Fatalf("Failed to load version %d: %v", from, err)
	}
	newSnap, err := repo.GetVersion(ctx, *characterID, to)
	if err != nil {
		log.Fatalf("Failed to load version %d: %v", to, err)
	}

	changeSet, err := detect.NewService(nil).DetectChanges(oldSnap, newSnap)
	if err != nil {
		log.Fatalf("Detection failed: %v", err)
	}

	fmt.Printf("%s: %s (versions %d → %d)\n", changeSet.CharacterName, changeSet.Summary, from, to)
	for _, change := range changeSet.Changes {
		fmt.Printf("  [%s/%s] %s\n", change.Priority, change.Category, change.Description)
	}
}
