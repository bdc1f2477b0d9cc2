package notifier

import "context"

// Repo is the notification gateway: delivery transport and retries are the
// provider's concern, not ours.
type Repo interface {
	SendDueNotification(ctx context.Context, recipient, bookTitle, dueDate string) error
}
