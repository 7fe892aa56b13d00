package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// snapshotData is the serialized form of a snapshot in Redis
type snapshotData struct {
	CharacterID int            `json:"character_id"`
	Version     int64          `json:"version"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data"`
}

// redisRepo implements Repository using Redis
type redisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration // 0 keeps snapshots forever
}

// RedisConfig holds configuration for the Redis repository
type RedisConfig struct {
	Client redis.UniversalClient // Required
	TTL    time.Duration         // Optional retention for old snapshots
}

// NewRedis creates a Redis-backed snapshot repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, dnderr.InvalidArgument("redis client is required")
	}
	return &redisRepo{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}, nil
}

func versionKey(characterID int, version int64) string {
	return fmt.Sprintf("snapshot:%d:%d", characterID, version)
}

func latestKey(characterID int) string {
	return fmt.Sprintf("snapshot:%d:latest", characterID)
}

func versionsKey(characterID int) string {
	return fmt.Sprintf("snapshot:%d:versions", characterID)
}

func (r *redisRepo) Save(ctx context.Context, snapshot *character.Snapshot) error {
	if snapshot == nil {
		return dnderr.InvalidArgument("snapshot is required")
	}

	raw, err := json.Marshal(snapshotData{
		CharacterID: snapshot.CharacterID,
		Version:     snapshot.Version,
		Timestamp:   snapshot.Timestamp,
		Data:        snapshot.Data,
	})
	if err != nil {
		return dnderr.Wrap(err, "failed to marshal snapshot")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, versionKey(snapshot.CharacterID, snapshot.Version), raw, r.ttl)
	pipe.Set(ctx, latestKey(snapshot.CharacterID), snapshot.Version, 0)
	pipe.ZAdd(ctx, versionsKey(snapshot.CharacterID), redis.Z{
		Score:  float64(snapshot.Version),
		Member: snapshot.Version,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrapf(err, "failed to save snapshot %d/%d", snapshot.CharacterID, snapshot.Version)
	}
	return nil
}

func (r *redisRepo) GetLatest(ctx context.Context, characterID int) (*character.Snapshot, error) {
	raw, err := r.client.Get(ctx, latestKey(characterID)).Result()
	if err == redis.Nil {
		return nil, dnderr.NotFoundf("no snapshots for character %d", characterID)
	}
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to read latest pointer for character %d", characterID)
	}

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, dnderr.Wrapf(err, "corrupt latest pointer for character %d", characterID)
	}
	return r.GetVersion(ctx, characterID, version)
}

func (r *redisRepo) GetVersion(ctx context.Context, characterID int, version int64) (*character.Snapshot, error) {
	raw, err := r.client.Get(ctx, versionKey(characterID, version)).Bytes()
	if err == redis.Nil {
		return nil, dnderr.NotFoundf("snapshot %d/%d not found", characterID, version)
	}
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to read snapshot %d/%d", characterID, version)
	}

	var data snapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, dnderr.Wrapf(err, "failed to unmarshal snapshot %d/%d", characterID, version)
	}
	return &character.Snapshot{
		CharacterID: data.CharacterID,
		Version:     data.Version,
		Timestamp:   data.Timestamp,
		Data:        data.Data,
	}, nil
}

func (r *redisRepo) ListVersions(ctx context.Context, characterID int) ([]int64, error) {
	members, err := r.client.ZRange(ctx, versionsKey(characterID), 0, -1).Result()
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to list versions for character %d", characterID)
	}

	versions := make([]int64, 0, len(members))
	for _, member := range members {
		version, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, version)
	}
	return versions, nil
}
