package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger can log structured debug information. It is implemented by
// ZerologLogger and other adapters.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debugf(string, ...any)         {}
func (Nop) Debugw(string, map[string]any) {}
func (Nop) Infof(string, ...any)          {}
func (Nop) Warnf(string, ...any)          {}
func (Nop) Errorf(string, ...any)         {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}

// Gated forwards debug output only while enabled reports true. Other levels
// always pass through.
type Gated struct {
	Next    Logger
	Enabled func() bool
}

func (g Gated) on() bool { return g.Enabled != nil && g.Enabled() }

func (g Gated) Debugf(format string, args ...any) {
	if g.on() {
		g.Next.Debugf(format, args...)
	}
}

func (g Gated) Debugw(msg string, fields map[string]any) {
	if g.on() {
		g.Next.Debugw(msg, fields)
	}
}

func (g Gated) Infof(format string, args ...any)  { g.Next.Infof(format, args...) }
func (g Gated) Warnf(format string, args ...any)  { g.Next.Warnf(format, args...) }
func (g Gated) Errorf(format string, args ...any) { g.Next.Errorf(format, args...) }
