// Package dmap implements the tag-tree wire format spoken by DAAP-style media
// shares.
//
// Every node is framed as a four byte ASCII tag, a four byte big-endian length
// and the encoded value. How a value is laid out depends on the tag's entry in
// a Registry: fixed-width big-endian integers, raw strings, or the
// concatenated frames of child nodes. Listing items use a filtered container
// kind so clients can ask for a subset of fields per item.
//
// Node values are a closed sum type built through the constructors in this
// package; encoding a tag that is missing from the registry fails with
// UnknownTagError instead of emitting malformed bytes.
package dmap
