// Package config loads application settings from a .env file, the
// environment and command line flags.
package config
