package notify

import (
	"context"
	"fmt"
	"log"
	"time"
)

// LogSender is the development sender: logs the outgoing message and returns a
// synthetic ID. The plaintext password inside the message is intentionally NOT
// logged in full.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, phone, message, channel string) (string, error) {
	preview := message
	if len(preview) > 40 {
		preview = preview[:40] + "..."
	}
	log.Printf("[notify] %s to %s: %q (%d bytes)", channel, phone, preview, len(message))
	return fmt.Sprintf("log_%d", time.Now().UnixNano()), nil
}
