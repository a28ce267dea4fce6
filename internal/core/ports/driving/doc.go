// Package driving provides interfaces exposed to user-facing adapters
// (primary/inbound ports). The CLI and HTTP API depend on these.
package driving
