package core

// Logger interface for diagnostic output from the rendering subsystems.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...interface{})
}
