// Package notifier provides notification interfaces and implementations for appointment alerts.
//
// Sinks receive a Message and deliver it best-effort. Multi fans a message
// out to several sinks and keeps going when one of them fails. Besides the
// Telegram client (package telegram) there is a Twitter sink that posts
// urgent alerts only, a dry-run sink that prints messages, and a log sink
// used when no messaging credentials are configured.
package notifier
