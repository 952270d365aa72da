// Package cli provides the interactive skyauth command-line client.
//
// It wires configuration, the gRPC client and a small REPL. Typical flow:
// register or log in, then ask the server who the current token belongs to.
// A background watcher pings the server and reports when it goes away or
// comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
