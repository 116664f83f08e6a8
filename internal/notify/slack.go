package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
}

func (n SlackNotifier) Notify(ctx context.Context, s Summary) error {
	msg := &slack.WebhookMessage{Text: FormatSummary(s)}
	if err := slack.PostWebhookContext(ctx, n.WebhookURL, msg); err != nil {
		return fmt.Errorf("notify: slack: %w", err)
	}
	return nil
}
