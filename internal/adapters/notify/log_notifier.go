package notify

import (
	"log"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

var _ domain.Notifier = (*LogNotifier)(nil)

// LogNotifier is the default notification sink: it writes toasts to
// the process log. The SPA client reads the same messages from API
// responses; sound and haptic triggers are gated by settings.
type LogNotifier struct {
	soundEnabled bool
}

func NewLogNotifier(soundEnabled bool) *LogNotifier {
	return &LogNotifier{soundEnabled: soundEnabled}
}

func (n *LogNotifier) Notify(message, severity string) {
	log.Printf("[NOTIFY] %s: %s", severity, message)

	if n.soundEnabled && (severity == domain.SeveritySuccess || severity == domain.SeverityPrompt) {
		log.Printf("[NOTIFY] chime")
	}
}
