// Package share dispatches share requests to tag-tree responses.
//
// Router looks only at the final path segment: login hands out session ids,
// update and databases answer with fixed trees, items serializes the catalog
// listing through a field filter built from the meta parameter, and
// "<item id>.<ext>" resolves a track to the file the transport should stream.
// Anything else is logged and answered with an empty body.
package share
