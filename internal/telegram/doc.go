// Package telegram provides Telegram Bot API integration for sending appointment notifications.
//
// The package sends Markdown-formatted messages via the Bot API using plain
// HTTP requests, one request per recipient chat. It also holds the
// formatters for urgent alerts, daily reports and service status messages.
//
// Authentication requires a bot token (from @BotFather) and at least one chat ID.
package telegram
