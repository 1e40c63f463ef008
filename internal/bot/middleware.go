package bot

import (
	"roomdesk/internal/metrics"
)

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncError()
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) isBlacklisted(userID int64) bool {
	for _, id := range b.config.Blacklist {
		if id == userID {
			return true
		}
	}
	return false
}
