package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixmark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when an edited image has been written to disk.
	EventExport Event = "export"
	// EventCopy fires when an image or URL has been placed on the clipboard.
	EventCopy Event = "copy"
)

// Preferences describes notification text, overridable from the environment.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "pixmark",
		Templates: map[Event]string{
			EventExport: "Saved %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies PIXMARK_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PIXMARK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for key, event := range map[string]Event{
		"PIXMARK_NOTIFY_EXPORT_TEXT": EventExport,
		"PIXMARK_NOTIFY_COPY_TEXT":   EventCopy,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[event] = v
		}
	}
	return prefs
}

var send = platform.Notify

// Notifier sends desktop notifications for enabled events. A nil Notifier is
// valid and silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Export announces a written file, using img as the icon when given.
func (n *Notifier) Export(path string, img image.Image) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	opts := platform.Options{}
	if img != nil {
		icon, cleanup, err := writePreview(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = icon
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := tmpl
	if strings.Contains(tmpl, "%") {
		body = fmt.Sprintf(tmpl, strings.TrimSpace(detail))
	}
	if err := send(n.prefs.Title, strings.TrimSpace(body), opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "pixmark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}, nil
}
