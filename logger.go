package evfsm // import "github.com/orkestr8/evfsm"

// nilLogger discards everything; it is the zero-value Logger so unit
// tests and library embedders never pay for logging setup unless they
// opt in.
type nilLogger struct{}

func (l *nilLogger) Debug(m string, args ...interface{}) {}
func (l *nilLogger) Error(m string, args ...interface{}) {}
func (l *nilLogger) Info(m string, args ...interface{})  {}
