// Package filehandler provides file output handlers that write formatted
// log entries to files with automatic rotation by size, age, or interval.
//
//   - SyncFileHandler writes through a buffered writer under one lock.
//   - AsyncFileHandler writes from a background goroutine through a
//     handler.Queue with per-level OverflowPolicy.
//
// With a formatter.Layout such as HTMLFormatter every file is a complete
// document: a new or empty file starts with the header, and the footer is
// written before a file is rotated away and on Close. Appending to a
// non-empty file does not repeat the header.
//
// Rotated files are renamed to <filename>.<timestamp>; MaxBackups bounds
// how many of them are kept.
package filehandler
