package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
)

const tweetLimit = 280

// TwitterCredentials holds the OAuth1 user-context credentials
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether all four credentials are set
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts urgent alerts to Twitter. Daily reports and
// status messages are meant for chat recipients and are skipped.
type TwitterNotifier struct {
	statuses statusUpdater
}

// NewTwitterNotifier creates a new Twitter notifier
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses}, nil
}

// Notify posts a tweet for urgent messages
func (n *TwitterNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Kind != KindUrgent || msg.Match == nil {
		return nil
	}

	tweet := formatTweet(*msg.Match)
	if _, _, err := n.statuses.Update(tweet, nil); err != nil {
		return fmt.Errorf("failed to post tweet for %s: %w", msg.Match.Slot.Key(), err)
	}

	return nil
}

// formatTweet formats an urgent match as a tweet
func formatTweet(m criteria.Match) string {
	tweet := "🚨 Appointment date available!\n\n"
	tweet += fmt.Sprintf("📍 %s\n", m.Slot.Target)
	tweet += fmt.Sprintf("🗓️ %s\n", m.Slot.Text)
	tweet += fmt.Sprintf("📌 %s\n", m.Criterion.Describe())
	tweet += "\n#Termin #Visa"

	if len(tweet) > tweetLimit {
		tweet = truncate(tweet, tweetLimit-3) + "..."
	}

	return tweet
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
