// Package version reports build information for the aggregate binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/aggregator/version.Version=1.0.0" ./cmd/aggregate
//
// Values left unset fall back to the VCS stamp the Go toolchain embeds.
package version
