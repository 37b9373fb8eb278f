package platform

// AppName identifies pixmark to the host notification service.
const AppName = "pixmark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath points to an image the notification center may show next to
	// the message.
	IconPath string
	// TimeoutMillis is how long the notification stays visible where the
	// platform honors it. Zero means five seconds.
	TimeoutMillis int32
}

func (o Options) timeout() int32 {
	if o.TimeoutMillis <= 0 {
		return 5000
	}
	return o.TimeoutMillis
}
