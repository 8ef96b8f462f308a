package notifier

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/task-streaks-api/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Notifier interface {
	NotifyAchievements(userID string, earned []catalog.Entry) error
}

// sender is the part of *discordgo.Session the notifier needs.
type sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   sender
	channelID string
}

// NewDiscordNotifier opens a bot session. The caller closes it with Close.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("opening discord session: %w", err)
	}

	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

func (n *DiscordNotifier) Close() error {
	if s, ok := n.session.(*discordgo.Session); ok {
		return s.Close()
	}
	return nil
}

func (n *DiscordNotifier) NotifyAchievements(userID string, earned []catalog.Entry) error {
	if len(earned) == 0 {
		return nil
	}
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, formatAchievements(userID, earned))
	if err != nil {
		slog.Warn("Failed to send discord message",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return err
	}
	return nil
}

var rarityTitle = cases.Title(language.English)

func formatAchievements(userID string, earned []catalog.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **Achievement Unlocked**\n**User:** %s\n", userID)
	for _, e := range earned {
		title := e.Title
		if e.Secret {
			title += " 🤫"
		}
		fmt.Fprintf(&b, "• **%s** (%s) - %s\n", title, rarityTitle.String(string(e.Rarity)), e.Description)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
