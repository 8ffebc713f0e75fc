// Package daemon coordinates the long-running share process.
//
// It wires configuration, the catalog loader, the request router, and the HTTP
// share server into a single lifecycle with flock-based locking to prevent
// multiple instances on one log directory. The server answers every GET by
// handing the path to the router and writing back either an encoded tag-tree
// or the streamed track file.
//
// Keep request semantics in the share package: the daemon focuses on startup,
// shutdown, and the transport.
package daemon
