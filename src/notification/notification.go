package notification

import (
	"log"

	"fyne.io/fyne/v2"
)

const maxMessageLen = 200

// Notifier shows a short desktop message.
type Notifier interface {
	Notify(title, message string)
}

// Fyne sends notifications through the app's desktop integration. Call it
// on the fyne main goroutine.
type Fyne struct {
	App fyne.App
}

func (f Fyne) Notify(title, message string) {
	f.App.SendNotification(fyne.NewNotification(title, truncate(message)))
}

// Log writes notifications to the log, for headless use.
type Log struct{}

func (Log) Notify(title, message string) {
	log.Printf("%s: %s", title, truncate(message))
}

// Saved announces a written capture.
func Saved(n Notifier, path string) {
	n.Notify("Screenshot saved", path)
}

// Failed announces a capture that did not complete.
func Failed(n Notifier, err error) {
	n.Notify("Capture failed", err.Error())
}

// truncate shortens s to maxMessageLen runes.
func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen]) + "..."
}
