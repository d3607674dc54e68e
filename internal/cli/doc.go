// Package cli parses command-line arguments, merges them over the file and
// environment configuration, and carries process exit codes.
package cli
