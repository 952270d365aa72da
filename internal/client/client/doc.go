// Package client talks to the skyauth gRPC endpoint on behalf of the CLI.
//
// GRPCClient keeps the token from the last successful Login in memory and
// attaches it to every outgoing call as x-auth-token metadata. Server errors
// are reduced to ErrUnavailable, ErrUnauthorized (wrapping the server's
// message) or a plain error carrying the server's message.
package client
