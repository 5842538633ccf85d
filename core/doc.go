// Package core defines the shared types used across nloghtml.
//
// It provides the Level type for severity filtering, the Entry type that
// represents a single log event, the Field type for structured key-value
// pairs, and the context helpers that carry the nested diagnostic context
// (NDC) and thread label of a call chain.
//
// Entry objects are pooled via sync.Pool. Callers get an Entry with
// GetEntry and return it with PutEntry once the handler has consumed it.
//
// An Entry carries the columns the HTML layout renders: time, thread,
// level, logger, message, optional NDC and optional caller location. A
// zero CallerInfo.Line means the line is unknown.
package core
