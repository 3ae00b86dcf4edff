package logger

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool
	// UseConsoleWriter prints human readable lines instead of JSON.
	UseConsoleWriter bool
}

// Rotation is one rolling log file.
type Rotation struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile configures the rolling log files below Path.
type LogFile struct {
	Enabled bool
	Path    string

	Access Rotation
	Error  Rotation // error, fatal and panic
	Warn   Rotation
	Info   Rotation // info and debug
	Trace  Rotation
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error
	LogEnv   string // added to every line as env

	// EnableAccessLogToConsole also prints access lines when Console is enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	Console Console
	File    LogFile
}
