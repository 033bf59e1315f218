package loghose

const defaultNotifyChanSize = 256

// Config needs to be created with NewConfig() and filled in with config
// as applicable for the intended setup, and provided in the call to
// loghose.New().
type Config struct {

	// Spec holds the JSON stream spec governing transform and ingest
	// behavior for this stream (required). See entity.Spec.
	Spec []byte

	Ops OpsConfig
}

// OpsConfig provides options for observability.
type OpsConfig struct {

	// Size of the notification channel buffer.
	NotifyChanSize int

	// If set to true native logging will be used (debug, info, warn, and
	// error logs). If set to false (default) no standard logging will be
	// done, but the same type of information will be provided on the
	// notification channel, accessible with loghose.NotifyChannel().
	Log bool
}

// NewConfig returns an initialized Config struct, required for
// loghose.New().
func NewConfig() *Config {
	return &Config{
		Ops: OpsConfig{NotifyChanSize: defaultNotifyChanSize},
	}
}
