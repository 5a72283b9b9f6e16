// Package notify sends rendered credential messages through an outbound
// gateway (WhatsApp or SMS). Delivery is best-effort: failures are logged and
// never roll back the operation that triggered them.
package notify

import "context"

type Sender interface {
	// Send dispatches message to phone over the given channel ("whatsapp" or
	// "sms") and returns the gateway message ID.
	Send(ctx context.Context, phone, message, channel string) (string, error)
}
