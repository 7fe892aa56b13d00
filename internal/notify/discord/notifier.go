package discord

//go:generate mockgen -destination=mock/mock_notifier.go -package=mockdiscord -source=notifier.go

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// embedFieldLimit is Discord's cap on fields per embed.
const embedFieldLimit = 25

// categoryOrder fixes presentation order of category sections.
var categoryOrder = []character.Category{
	character.CategoryProgression,
	character.CategoryBasicInfo,
	character.CategoryCombat,
	character.CategoryAbilities,
	character.CategorySpells,
	character.CategoryFeatures,
	character.CategorySkills,
	character.CategoryEquipment,
	character.CategoryInventory,
	character.CategorySocial,
	character.CategoryMetadata,
}

var categoryTitles = map[character.Category]string{
	character.CategoryProgression: "Progression",
	character.CategoryBasicInfo:   "Basic Info",
	character.CategoryCombat:      "Combat",
	character.CategoryAbilities:   "Ability Scores",
	character.CategorySpells:      "Spells",
	character.CategoryFeatures:    "Feats & Features",
	character.CategorySkills:      "Skills & Proficiencies",
	character.CategoryEquipment:   "Equipment",
	character.CategoryInventory:   "Inventory",
	character.CategorySocial:      "Roleplay",
	character.CategoryMetadata:    "Other",
}

// Notifier delivers classified change lists to a Discord channel.
type Notifier interface {
	// Send formats and delivers one character's changes. Delivery failure
	// returns an error; an empty change list is a no-op.
	Send(ctx context.Context, characterName string, fromVersion, toVersion int64, changes []*character.FieldChange) error
}

// webhookSender is the slice of discordgo the notifier uses, extracted so
// formatting tests run without a live session.
type webhookSender interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// notifier implements Notifier over a Discord webhook.
type notifier struct {
	sender       webhookSender
	webhookID    string
	webhookToken string
	username     string
}

// Config holds configuration for the Discord notifier
type Config struct {
	Session      *discordgo.Session // Required unless Sender is set
	WebhookID    string             // Required
	WebhookToken string             // Required
	Username     string             // Optional display name

	// Sender overrides the session transport, for tests.
	Sender any
}

// New creates a Discord notifier
func New(cfg *Config) (Notifier, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("config is required")
	}
	if cfg.WebhookID == "" || cfg.WebhookToken == "" {
		return nil, dnderr.InvalidArgument("webhook id and token are required")
	}

	var sender webhookSender
	if cfg.Sender != nil {
		s, ok := cfg.Sender.(webhookSender)
		if !ok {
			return nil, dnderr.InvalidArgument("sender does not implement WebhookExecute")
		}
		sender = s
	} else {
		if cfg.Session == nil {
			return nil, dnderr.InvalidArgument("discord session is required")
		}
		sender = cfg.Session
	}

	return &notifier{
		sender:       sender,
		webhookID:    cfg.WebhookID,
		webhookToken: cfg.WebhookToken,
		username:     cfg.Username,
	}, nil
}

func (n *notifier) Send(ctx context.Context, characterName string, fromVersion, toVersion int64, changes []*character.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return dnderr.Wrap(err, "notification canceled")
	}

	embed := n.buildEmbed(characterName, fromVersion, toVersion, changes)
	params := &discordgo.WebhookParams{
		Username: n.username,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}

	if _, err := n.sender.WebhookExecute(n.webhookID, n.webhookToken, true, params); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeDelivery, "discord webhook delivery failed")
	}
	return nil
}

func (n *notifier) buildEmbed(characterName string, fromVersion, toVersion int64, changes []*character.FieldChange) *discordgo.MessageEmbed {
	groups := detect.GroupByCategory(changes)

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s changed", characterName),
		Color:     embedColor(changes),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("versions %d → %d", fromVersion, toVersion),
		},
	}

	for _, category := range categoryOrder {
		group := groups[category]
		if len(group) == 0 {
			continue
		}
		if len(embed.Fields) >= embedFieldLimit {
			break
		}

		lines := make([]string, 0, len(group))
		for _, change := range group {
			lines = append(lines, fmt.Sprintf("%s %s", priorityMarker(change.Priority), change.Description))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  categoryTitles[category],
			Value: clampField(strings.Join(lines, "\n")),
		})
	}
	return embed
}

// clampField keeps a field value inside Discord's 1024-char limit. The cut
// point backs up to a rune boundary so multi-byte arrows in descriptions are
// never split.
func clampField(value string) string {
	const limit = 1024
	if len(value) <= limit {
		return value
	}
	cut := limit - len("…")
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut] + "…"
}

func priorityMarker(priority character.Priority) string {
	switch priority {
	case character.PriorityCritical:
		return "🔴"
	case character.PriorityHigh:
		return "🟠"
	case character.PriorityMedium:
		return "🟡"
	default:
		return "⚪"
	}
}

func embedColor(changes []*character.FieldChange) int {
	highest := character.PriorityLow
	for _, change := range changes {
		if change.Priority > highest {
			highest = change.Priority
		}
	}
	switch highest {
	case character.PriorityCritical:
		return 0xE74C3C
	case character.PriorityHigh:
		return 0xE67E22
	case character.PriorityMedium:
		return 0xF1C40F
	default:
		return 0x95A5A6
	}
}
