// Package logger wraps zap for the release pipeline:
//   - a global sugared logger with a console encoder (colored on a terminal),
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every stage takes a context and logs through the logger carried by it, so
// the run id and stage name follow each message.
package logger
