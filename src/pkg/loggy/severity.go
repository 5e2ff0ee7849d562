package loggy

// Per-severity convenience methods. Each is equivalent to At with the
// matching label: caller fields supplied through With can still
// override the level.

// Trace records message at "trace".
func (l *Logger) Trace(message string, args ...Arg) { l.At("trace", Text(message), args...) }

// Verbose records message at "verbose".
func (l *Logger) Verbose(message string, args ...Arg) { l.At("verbose", Text(message), args...) }

// Silly records message at "silly".
func (l *Logger) Silly(message string, args ...Arg) { l.At("silly", Text(message), args...) }

// Debug records message at "debug".
func (l *Logger) Debug(message string, args ...Arg) { l.At("debug", Text(message), args...) }

// Info records message at "info".
func (l *Logger) Info(message string, args ...Arg) { l.At("info", Text(message), args...) }

// Notice records message at "notice".
func (l *Logger) Notice(message string, args ...Arg) { l.At("notice", Text(message), args...) }

// Success records message at "success".
func (l *Logger) Success(message string, args ...Arg) { l.At("success", Text(message), args...) }

// HTTP records message at "http".
func (l *Logger) HTTP(message string, args ...Arg) { l.At("http", Text(message), args...) }

// Timing records message at "timing".
func (l *Logger) Timing(message string, args ...Arg) { l.At("timing", Text(message), args...) }

// Redirect records message at "redirect".
func (l *Logger) Redirect(message string, args ...Arg) { l.At("redirect", Text(message), args...) }

// Warn records message at "warn".
func (l *Logger) Warn(message string, args ...Arg) { l.At("warn", Text(message), args...) }

// Warning records message at "warning".
func (l *Logger) Warning(message string, args ...Arg) { l.At("warning", Text(message), args...) }

// Error records message at "error".
func (l *Logger) Error(message string, args ...Arg) { l.At("error", Text(message), args...) }

// Crit records message at "crit".
func (l *Logger) Crit(message string, args ...Arg) { l.At("crit", Text(message), args...) }

// Critical records message at "critical".
func (l *Logger) Critical(message string, args ...Arg) { l.At("critical", Text(message), args...) }

// Fatal records message at "fatal". With exit-on-fatal enabled the
// buffer is delivered synchronously and the process terminates with
// status 1.
func (l *Logger) Fatal(message string, args ...Arg) { l.At("fatal", Text(message), args...) }

// Alert records message at "alert".
func (l *Logger) Alert(message string, args ...Arg) { l.At("alert", Text(message), args...) }

// Emerg records message at "emerg". Fatal-class: see Fatal.
func (l *Logger) Emerg(message string, args ...Arg) { l.At("emerg", Text(message), args...) }

// Emergency records message at "emergency". Fatal-class: see Fatal.
func (l *Logger) Emergency(message string, args ...Arg) { l.At("emergency", Text(message), args...) }
