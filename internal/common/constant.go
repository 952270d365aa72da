// Package common contains shared constants and sentinel errors used across
// skyauth components.
package common

// AuthTokenHeaderName is the HTTP header that carries the signed token.
const AuthTokenHeaderName = "X-Auth-Token"

// AuthTokenMetadataKey is the gRPC metadata key that carries the signed token.
// gRPC lowercases metadata keys on the wire.
const AuthTokenMetadataKey = "x-auth-token"

// DefaultRole is stored when Register is called without a role.
const DefaultRole = "user"

// OwnerRole is the only role with special meaning: it is required for
// privileged mutations of shared configuration.
const OwnerRole = "owner"
