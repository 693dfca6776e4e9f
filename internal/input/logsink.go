package input

import "log/slog"

// LogSink records input at debug level instead of injecting it. It is the
// fallback on hosts without an injection backend.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{log: logger}
}

func (s *LogSink) Open() error  { return nil }
func (s *LogSink) Close() error { return nil }

func (s *LogSink) MoveTo(x, y int) error {
	s.log.Debug("input: move", "x", x, "y", y)
	return nil
}

func (s *LogSink) ButtonDown(b MouseButton) error {
	s.log.Debug("input: button down", "button", int(b))
	return nil
}

func (s *LogSink) ButtonUp(b MouseButton) error {
	s.log.Debug("input: button up", "button", int(b))
	return nil
}

func (s *LogSink) PressKey(k Key) error {
	s.log.Debug("input: press key", "key", k.String())
	return nil
}

func (s *LogSink) TypeText(text string) error {
	s.log.Debug("input: type", "text", text)
	return nil
}
