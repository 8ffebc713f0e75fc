// Package main hosts the daapshare CLI entrypoint and command graph.
//
// The Cobra command tree runs the share daemon in the foreground, scaffolds
// and validates configuration, maintains the library database, runs
// preflight checks, and fetches and decodes tag-trees from a running share.
// Configuration resolution happens once in the root command so subcommands
// only deal with their own flags.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
