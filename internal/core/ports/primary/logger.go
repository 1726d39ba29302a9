package primary

// Logger is the structured logger every component receives. Arguments after
// the message are alternating key/value pairs.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	With(args ...interface{}) Logger
}
