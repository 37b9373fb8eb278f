//go:build linux

package platform

import (
	"log"

	"github.com/godbus/dbus/v5"
)

// Notify sends a desktop notification over the session bus using the
// org.freedesktop.Notifications interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("dbus close: %v", cerr)
		}
	}()

	hints := map[string]dbus.Variant{
		"category": dbus.MakeVariant("transfer.complete"),
	}
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, opts.timeout())
	return call.Err
}
