// Package process runs external tools with explicit argument vectors.
//
// No shell is involved, so arguments never need escaping. Tool output is
// streamed line by line into the context logger and a non-zero exit is
// reported as build.ErrProcess.
package process
