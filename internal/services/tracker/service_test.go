package tracker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mockbeyond "github.com/KirkDiggler/beyond-tracker/internal/clients/beyond/mock"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
	mockdiscord "github.com/KirkDiggler/beyond-tracker/internal/notify/discord/mock"
	mockchangelog "github.com/KirkDiggler/beyond-tracker/internal/repositories/changelog/mock"
	mocksnapshots "github.com/KirkDiggler/beyond-tracker/internal/repositories/snapshots/mock"
	"github.com/KirkDiggler/beyond-tracker/internal/services/tracker"
	"github.com/KirkDiggler/beyond-tracker/internal/testutils"
)

type trackerSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	ctx  context.Context

	client    *mockbeyond.MockClient
	snapshots *mocksnapshots.MockRepository
	changeLog *mockchangelog.MockRepository
	notifier  *mockdiscord.MockNotifier

	service tracker.Service
}

func (s *trackerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()

	s.client = mockbeyond.NewMockClient(s.ctrl)
	s.snapshots = mocksnapshots.NewMockRepository(s.ctrl)
	s.changeLog = mockchangelog.NewMockRepository(s.ctrl)
	s.notifier = mockdiscord.NewMockNotifier(s.ctrl)

	svc, err := tracker.NewService(&tracker.ServiceConfig{
		Client:       s.client,
		SnapshotRepo: s.snapshots,
		ChangeLog:    s.changeLog,
		Notifier:     s.notifier,
		CharacterIDs: []int{1001},
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *trackerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(trackerSuite))
}

func (s *trackerSuite) TestRefreshCharacter_FirstSightingStoresBaseline() {
	data := testutils.CharacterFixture()
	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(data, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).
		Return(nil, dnderr.NotFoundf("no snapshots for character %d", 1001))
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	changeSet, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().NoError(err)
	s.Nil(changeSet, "baseline runs produce no change set")
}

func (s *trackerSuite) TestRefreshCharacter_ChangesRoutedToBothTargets() {
	before := testutils.CharacterFixture()
	after := testutils.CloneData(before)
	after["level"] = 5
	after["max_hp"] = 44

	previous := character.NewSnapshot(1001, before)

	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(after, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).Return(previous, nil)
	s.changeLog.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, set *character.ChangeSet) error {
			s.True(set.HasChanges())
			return nil
		})
	s.notifier.EXPECT().Send(gomock.Any(), "Thorin Oakenshield", previous.Version, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ int64, changes []*character.FieldChange) error {
			s.NotEmpty(changes)
			return nil
		})
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	changeSet, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().NoError(err)
	s.Require().NotNil(changeSet)
	s.True(changeSet.HasChanges())
	s.Equal(character.PriorityCritical, changeSet.HighestPriority())
}

func (s *trackerSuite) TestRefreshCharacter_LowPriorityChangesSkipDiscord() {
	before := testutils.CharacterFixture()
	after := testutils.CloneData(before)
	after["currency"] = map[string]any{"gold": 45, "silver": 30, "copper": 12}

	previous := character.NewSnapshot(1001, before)

	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(after, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).Return(previous, nil)
	// the change log keeps low-priority history; discord stays quiet
	s.changeLog.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	changeSet, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().NoError(err)
	s.True(changeSet.HasChanges())
}

func (s *trackerSuite) TestRefreshCharacter_NoChangesStillStoresSnapshot() {
	data := testutils.CharacterFixture()
	previous := character.NewSnapshot(1001, testutils.CloneData(data))

	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(data, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).Return(previous, nil)
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	changeSet, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().NoError(err)
	s.False(changeSet.HasChanges())
}

func (s *trackerSuite) TestRefreshCharacter_FetchFailure() {
	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).
		Return(nil, dnderr.New(dnderr.CodeUnavailable, "character service down"))

	_, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().Error(err)
	s.Equal(dnderr.CodeUnavailable, dnderr.GetCode(err))
}

func (s *trackerSuite) TestRefreshCharacter_DeliveryFailureDoesNotBlockPersistence() {
	before := testutils.CharacterFixture()
	after := testutils.CloneData(before)
	after["armor_class"] = 18

	previous := character.NewSnapshot(1001, before)

	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(after, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).Return(previous, nil)
	s.changeLog.EXPECT().Append(gomock.Any(), gomock.Any()).
		Return(dnderr.New(dnderr.CodeInternal, "disk full"))
	s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dnderr.New(dnderr.CodeDelivery, "webhook gone"))
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	changeSet, err := s.service.RefreshCharacter(s.ctx, 1001)
	s.Require().NoError(err, "dead targets must not block the snapshot write")
	s.True(changeSet.HasChanges())
}

func (s *trackerSuite) TestRefreshAll() {
	data := testutils.CharacterFixture()
	s.client.EXPECT().GetCharacter(gomock.Any(), 1001).Return(data, nil)
	s.snapshots.EXPECT().GetLatest(gomock.Any(), 1001).
		Return(nil, dnderr.NotFoundf("no snapshots for character %d", 1001))
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	s.Require().NoError(s.service.RefreshAll(s.ctx))
}

func TestNewService_Validation(t *testing.T) {
	_, err := tracker.NewService(nil)
	require.Error(t, err)
	assert.True(t, dnderr.IsInvalidArgument(err))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err = tracker.NewService(&tracker.ServiceConfig{Client: mockbeyond.NewMockClient(ctrl)})
	require.Error(t, err)
	assert.True(t, dnderr.IsInvalidArgument(err))
}
