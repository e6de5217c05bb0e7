// Package notifier pushes short operator alerts to a chat channel.
package notifier

import "context"

// TextNotifier sends one preformatted message.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}
