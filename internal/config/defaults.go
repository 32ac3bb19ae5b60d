package config

const (
	defaultIncomingDir       = "~/.local/share/unspool/incoming"
	defaultOutputDir         = "~/.local/share/unspool/media"
	defaultLogDir            = "~/.local/share/unspool/logs"
	defaultAPIBind           = "127.0.0.1:7956"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultQueuePollInterval = 5
	defaultWorkers           = 1
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir: defaultIncomingDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			Workers:           defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
