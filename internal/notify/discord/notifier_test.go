package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// capturingSender records webhook calls instead of hitting Discord.
type capturingSender struct {
	webhookID string
	token     string
	wait      bool
	params    *discordgo.WebhookParams
	err       error
	calls     int
}

func (s *capturingSender) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.calls++
	s.webhookID = webhookID
	s.token = token
	s.wait = wait
	s.params = data
	return &discordgo.Message{}, s.err
}

func newTestNotifier(t *testing.T, sender *capturingSender) Notifier {
	t.Helper()
	n, err := New(&Config{
		WebhookID:    "hook-id",
		WebhookToken: "hook-token",
		Username:     "Beyond Tracker",
		Sender:       sender,
	})
	require.NoError(t, err)
	return n
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.True(t, dnderr.IsInvalidArgument(err))

	_, err = New(&Config{WebhookID: "id"})
	assert.True(t, dnderr.IsInvalidArgument(err))

	_, err = New(&Config{WebhookID: "id", WebhookToken: "token"})
	assert.True(t, dnderr.IsInvalidArgument(err), "no session and no sender")

	_, err = New(&Config{WebhookID: "id", WebhookToken: "token", Sender: "not a sender"})
	assert.True(t, dnderr.IsInvalidArgument(err))
}

func TestSend_EmptyChangesIsNoop(t *testing.T) {
	sender := &capturingSender{}
	n := newTestNotifier(t, sender)

	require.NoError(t, n.Send(context.Background(), "Thorin", 100, 160, nil))
	assert.Zero(t, sender.calls)
}

func TestSend_BuildsEmbed(t *testing.T) {
	sender := &capturingSender{}
	n := newTestNotifier(t, sender)

	levelUp := character.NewFieldChange("level", 4, 5, character.ChangeTypeIncremented)
	levelUp.Priority = character.PriorityCritical
	levelUp.Category = character.CategoryProgression
	levelUp.Description = "Level up! 4 → 5"

	spell := character.NewFieldChange("spells.Fireball", nil, map[string]any{"name": "Fireball", "level": 3}, character.ChangeTypeAdded)
	spell.Priority = character.PriorityHigh
	spell.Category = character.CategorySpells
	spell.Description = "Learned level 3 spell: Fireball"

	require.NoError(t, n.Send(context.Background(), "Elaria", 100, 160, []*character.FieldChange{spell, levelUp}))
	require.Equal(t, 1, sender.calls)
	assert.Equal(t, "hook-id", sender.webhookID)
	assert.Equal(t, "hook-token", sender.token)
	assert.True(t, sender.wait)
	assert.Equal(t, "Beyond Tracker", sender.params.Username)

	require.Len(t, sender.params.Embeds, 1)
	embed := sender.params.Embeds[0]
	assert.Equal(t, "Elaria changed", embed.Title)
	assert.Equal(t, 0xE74C3C, embed.Color, "critical change colors the embed red")
	assert.Equal(t, "versions 100 → 160", embed.Footer.Text)

	require.Len(t, embed.Fields, 2)
	// progression section renders before spells
	assert.Equal(t, "Progression", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "🔴 Level up! 4 → 5")
	assert.Equal(t, "Spells", embed.Fields[1].Name)
	assert.Contains(t, embed.Fields[1].Value, "🟠 Learned level 3 spell: Fireball")
}

func TestSend_DeliveryFailure(t *testing.T) {
	sender := &capturingSender{err: errors.New("502 bad gateway")}
	n := newTestNotifier(t, sender)

	change := character.NewFieldChange("level", 4, 5, character.ChangeTypeIncremented)
	change.Category = character.CategoryProgression
	change.Description = "Level up! 4 → 5"

	err := n.Send(context.Background(), "Thorin", 100, 160, []*character.FieldChange{change})
	require.Error(t, err)
	assert.Equal(t, dnderr.CodeDelivery, dnderr.GetCode(err))
}

func TestSend_CanceledContext(t *testing.T) {
	sender := &capturingSender{}
	n := newTestNotifier(t, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	change := character.NewFieldChange("level", 4, 5, character.ChangeTypeIncremented)
	err := n.Send(ctx, "Thorin", 100, 160, []*character.FieldChange{change})
	require.Error(t, err)
	assert.Zero(t, sender.calls)
}

func TestClampField(t *testing.T) {
	short := "short value"
	assert.Equal(t, short, clampField(short))

	long := strings.Repeat("a", 2000)
	clamped := clampField(long)
	assert.LessOrEqual(t, len(clamped), 1024)
	assert.True(t, strings.HasSuffix(clamped, "…"))
}

func TestClampField_RuneBoundary(t *testing.T) {
	// change descriptions are full of multi-byte arrows; try every offset so
	// some cut point is guaranteed to land mid-rune
	for pad := 0; pad < 4; pad++ {
		long := strings.Repeat("a", pad) + strings.Repeat("25 → 30, ", 200)
		clamped := clampField(long)
		assert.True(t, utf8.ValidString(clamped), "pad %d produced invalid UTF-8", pad)
		assert.LessOrEqual(t, len(clamped), 1024)
		assert.True(t, strings.HasSuffix(clamped, "…"))
	}
}
