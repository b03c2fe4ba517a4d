package notification

import (
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
)

// Notifier shows desktop notifications through the fyne app. With no app it
// only logs.
type Notifier struct {
	app fyne.App
}

func New(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

func (n *Notifier) Notify(title, message string) {
	log.Printf("Notification: %s: %s", title, message)
	if n == nil || n.app == nil {
		return
	}
	n.app.SendNotification(fyne.NewNotification(title, message))
}

// ShowBlockingError reports a fatal startup error before any UI exists.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
