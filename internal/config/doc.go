// Package config resolves the supervisor configuration from defaults, an
// optional HCL file, and HOTSWAP_* environment variables. Command-line flags
// are applied on top by package cli.
package config
