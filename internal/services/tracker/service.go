package tracker

//go:generate mockgen -destination=mock/mock_service.go -package=mocktracker -source=service.go

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/beyond-tracker/internal/clients/beyond"
	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
	"github.com/KirkDiggler/beyond-tracker/internal/notify/discord"
	"github.com/KirkDiggler/beyond-tracker/internal/repositories/changelog"
	"github.com/KirkDiggler/beyond-tracker/internal/repositories/snapshots"
)

// Service drives the scrape, detect, notify, persist cycle.
type Service interface {
	// RefreshAll refreshes every tracked character. Individual character
	// failures are logged and do not stop the others; the returned error
	// reflects the first failure, if any.
	RefreshAll(ctx context.Context) error

	// RefreshCharacter fetches the character, compares against the stored
	// snapshot, routes changes, and stores the new snapshot. The first
	// refresh of a character stores a baseline and returns a nil change set.
	RefreshCharacter(ctx context.Context, characterID int) (*character.ChangeSet, error)
}

// service implements the Service interface
type service struct {
	client       beyond.Client
	snapshotRepo snapshots.Repository
	changeLog    changelog.Repository
	detector     detect.Service
	notifier     discord.Notifier
	characterIDs []int
	concurrency  int
}

// ServiceConfig holds configuration for the tracker service
type ServiceConfig struct {
	Client       beyond.Client        // Required
	SnapshotRepo snapshots.Repository // Required
	ChangeLog    changelog.Repository // Optional, disables history when nil
	Detector     detect.Service       // Optional, defaults applied when nil
	Notifier     discord.Notifier     // Optional, disables Discord when nil
	CharacterIDs []int
	Concurrency  int // parallel refreshes in RefreshAll, default 4
}

// NewService creates a tracker service
func NewService(cfg *ServiceConfig) (Service, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, dnderr.InvalidArgument("beyond client is required")
	}
	if cfg.SnapshotRepo == nil {
		return nil, dnderr.InvalidArgument("snapshot repository is required")
	}

	svc := &service{
		client:       cfg.Client,
		snapshotRepo: cfg.SnapshotRepo,
		changeLog:    cfg.ChangeLog,
		detector:     cfg.Detector,
		notifier:     cfg.Notifier,
		characterIDs: cfg.CharacterIDs,
		concurrency:  cfg.Concurrency,
	}
	if svc.detector == nil {
		svc.detector = detect.NewService(nil)
	}
	if svc.concurrency <= 0 {
		svc.concurrency = 4
	}
	return svc, nil
}

func (s *service) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, characterID := range s.characterIDs {
		characterID := characterID
		g.Go(func() error {
			changeSet, err := s.RefreshCharacter(ctx, characterID)
			if err != nil {
				log.Printf("tracker: refresh of character %d failed: %v", characterID, err)
				return err
			}
			if changeSet != nil && changeSet.HasChanges() {
				log.Printf("tracker: character %d (%s): %s", characterID, changeSet.CharacterName, changeSet.Summary)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *service) RefreshCharacter(ctx context.Context, characterID int) (*character.ChangeSet, error) {
	data, err := s.client.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to fetch character %d", characterID)
	}
	latest := character.NewSnapshot(characterID, data)

	previous, err := s.snapshotRepo.GetLatest(ctx, characterID)
	if err != nil {
		if !dnderr.IsNotFound(err) {
			return nil, dnderr.Wrapf(err, "failed to load previous snapshot for character %d", characterID)
		}
		// first sighting: store the baseline, nothing to compare yet
		if err := s.snapshotRepo.Save(ctx, latest); err != nil {
			return nil, dnderr.Wrapf(err, "failed to store baseline for character %d", characterID)
		}
		log.Printf("tracker: stored baseline snapshot for character %d (%s)", characterID, latest.Name())
		return nil, nil
	}

	changeSet, err := s.detector.DetectChanges(previous, latest)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to detect changes for character %d", characterID)
	}

	if changeSet.HasChanges() {
		s.route(ctx, changeSet)
	}

	if err := s.snapshotRepo.Save(ctx, latest); err != nil {
		return nil, dnderr.Wrapf(err, "failed to store snapshot for character %d", characterID)
	}
	return changeSet, nil
}

// route fans the change set out to its targets. Delivery failures are logged,
// not returned: a dead webhook must not block snapshot persistence.
func (s *service) route(ctx context.Context, changeSet *character.ChangeSet) {
	if s.changeLog != nil {
		logged := filterForTarget(s.detector, changeSet, detect.TargetChangelog)
		if logged.HasChanges() {
			if err := s.changeLog.Append(ctx, logged); err != nil {
				log.Printf("tracker: change log append failed for character %d: %v", changeSet.CharacterID, err)
			}
		}
	}

	if s.notifier != nil {
		notified := filterForTarget(s.detector, changeSet, detect.TargetDiscord)
		if notified.HasChanges() {
			err := s.notifier.Send(ctx, changeSet.CharacterName, changeSet.FromVersion, changeSet.ToVersion, notified.Changes)
			if err != nil {
				log.Printf("tracker: discord delivery failed for character %d: %v", changeSet.CharacterID, err)
			}
		}
	}
}

// filterForTarget narrows a change set to the changes that clear one
// target's threshold.
func filterForTarget(detector detect.Service, changeSet *character.ChangeSet, target detect.NotificationTarget) *character.ChangeSet {
	kept := make([]*character.FieldChange, 0, len(changeSet.Changes))
	for _, change := range changeSet.Changes {
		if detector.ShouldNotify(change, target) {
			kept = append(kept, change)
		}
	}
	narrowed := *changeSet
	narrowed.Changes = kept
	return &narrowed
}
