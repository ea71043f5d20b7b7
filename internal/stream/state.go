// Package stream implements the resumable client for per-job live event
// streams. A Session owns at most one Connection to the server's SSE
// endpoint, tracks the highest sequence seen, and transparently reconnects
// after transient network failures, resuming from where it left off.
package stream

// ConnectionState is the externally visible state of a stream session.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)
