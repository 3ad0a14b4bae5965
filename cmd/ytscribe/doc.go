// Package main hosts the ytscribe CLI entrypoint and command graph.
//
// Each pipeline step has its own subcommand (download, download-audio,
// extract, transcribe) and `run` chains all three. Commands share config
// resolution and logger construction through commandContext; flags
// override config values, which override built-in defaults.
//
// Exit status follows services.ExitCode: a failing tool's own status is
// passed through, every other failure exits 1.
package main
