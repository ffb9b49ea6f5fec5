package core

// Logger is any leveled logger. Implementations may inspect args for known
// types (eg. the logged-in session user) and report them to an external
// service; everything else is printed as-is.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
