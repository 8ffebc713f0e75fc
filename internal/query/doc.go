// Package query defines the executor the catalog builds against and its two
// implementations.
//
// Every executor returns the result of a SELECT as one flat, row-major slice of
// strings. SQLExecutor runs statements against a database/sql handle (the
// SQLite library). PipeExecutor speaks the line protocol of a host process that
// owns the real database: it prints the statement to a writer and collects
// result lines from a reader until the end sentinel.
package query
