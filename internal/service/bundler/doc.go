// Package bundler prepares the application tree and wraps it into a native
// executable with the external bundler. It only builds argv and delegates to
// a process.Runner; the tools themselves are never reimplemented.
package bundler
