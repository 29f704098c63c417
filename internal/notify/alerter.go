package notify

import (
	"log/slog"
	"os/exec"
)

// Alerter performs the local side effects of an incoming notification.
// Implementations must not block and must not surface errors to the
// caller — a failed sound cue is a log line, nothing more.
type Alerter interface {
	// Sound plays the notification cue.
	Sound()

	// Popup shows a desktop notification with the given title and body.
	Popup(title, body string)
}

// NopAlerter silences all side effects.
type NopAlerter struct{}

func (NopAlerter) Sound()                   {}
func (NopAlerter) Popup(title, body string) {}

// CommandAlerter shells out to configured commands: SoundCmd is run as-is,
// PopupCmd gets the title and body appended as arguments (the notify-send
// convention). Empty commands disable their effect.
type CommandAlerter struct {
	SoundCmd string
	PopupCmd string
}

func (a CommandAlerter) Sound() {
	if a.SoundCmd == "" {
		return
	}
	go func() {
		if err := exec.Command("/bin/sh", "-c", a.SoundCmd).Run(); err != nil {
			slog.Warn("notify: sound command failed", "cmd", a.SoundCmd, "err", err)
		}
	}()
}

func (a CommandAlerter) Popup(title, body string) {
	if a.PopupCmd == "" {
		return
	}
	go func() {
		if err := exec.Command(a.PopupCmd, title, body).Run(); err != nil {
			slog.Warn("notify: popup command failed", "cmd", a.PopupCmd, "err", err)
		}
	}()
}
