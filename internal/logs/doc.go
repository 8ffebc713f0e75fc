// Package logs reads the daemon log file for `daapshare logs`.
//
// Last reads the final N lines with bounded memory; Follow polls from an
// offset and hands each new line to a callback until the context ends. A
// missing file is treated as empty so the CLI works before the first run.
package logs
