// Package preflight provides readiness checks for the filesystem paths and
// listener that daapshare depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failure without
//     refusing to start, since device mountpoints come and go.
//   - The CLI "daapshare check" command renders the same results as a table,
//     and can additionally probe a running share with CheckShare.
package preflight
