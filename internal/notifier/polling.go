package notifier

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

// CommandHandler answers one chat command; an empty reply sends nothing.
type CommandHandler func(command string) string

// PollTimeout is the long-poll wait passed to getUpdates.
var PollTimeout = 30 * time.Second

// pollRetryDelay is the pause after a failed getUpdates call.
var pollRetryDelay = 5 * time.Second

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls getUpdates and answers commands from the configured chat.
// It blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := *t.Client
	client.Timeout = PollTimeout + 5*time.Second
	offset := 0

	for ctx.Err() == nil {
		var updates []telegramUpdate
		payload := map[string]interface{}{
			"offset":          offset,
			"timeout":         int(PollTimeout.Seconds()),
			"allowed_updates": []string{"message"},
		}
		if err := t.call(ctx, &client, "getUpdates", payload, &updates); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] telegram polling: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			if t.ChatID != "" && strconv.FormatInt(u.Message.Chat.ID, 10) != t.ChatID {
				log.Printf("[WARN] ignoring message from chat %d", u.Message.Chat.ID)
				continue
			}
			cmd, ok := parseCommand(u.Message.Text)
			if !ok {
				continue
			}
			log.Printf("[INFO] received command: %s", cmd)
			if reply := handler(cmd); reply != "" {
				if err := t.Send(reply); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
	log.Println("[INFO] Telegram polling stopped")
}

// parseCommand reduces "/Next@farjax_bot now" to "/next". Plain text is not a command.
func parseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd), true
}
