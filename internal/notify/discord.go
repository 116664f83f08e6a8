package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier executes a Discord webhook. Webhooks need no bot token, so
// the session is created without one.
type DiscordNotifier struct {
	session *discordgo.Session
	id      string
	token   string
}

func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := parseDiscordWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("notify: discord: new session: %w", err)
	}
	return &DiscordNotifier{session: session, id: id, token: token}, nil
}

func (n *DiscordNotifier) Notify(ctx context.Context, s Summary) error {
	params := &discordgo.WebhookParams{
		Username: "Lead Triage",
		Content:  FormatSummary(s),
	}
	if _, err := n.session.WebhookExecute(n.id, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("notify: discord: %w", err)
	}
	return nil
}

// parseDiscordWebhook pulls the id and token out of
// https://discord.com/api/webhooks/{id}/{token}.
func parseDiscordWebhook(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("notify: discord: parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("notify: discord: %q is not a webhook url", raw)
}
