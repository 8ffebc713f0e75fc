package dmap

import (
	"encoding/binary"
	"fmt"
)

// Decode parses a sequence of frames back into nodes. Integer and string
// values come back as Int and Str; an empty body decodes to Null.
func (c *Codec) Decode(data []byte) ([]Node, error) {
	var nodes []Node
	for len(data) > 0 {
		node, rest, err := c.decodeFrame(data)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
		data = rest
	}
	return nodes, nil
}

// DecodeOne parses exactly one frame and rejects trailing bytes.
func (c *Codec) DecodeOne(data []byte) (Node, error) {
	node, rest, err := c.decodeFrame(data)
	if err != nil {
		return Node{}, err
	}
	if len(rest) != 0 {
		return Node{}, fmt.Errorf("%d trailing bytes after %q", len(rest), node.Tag)
	}
	return node, nil
}

func (c *Codec) decodeFrame(data []byte) (Node, []byte, error) {
	if len(data) < headerSize {
		return Node{}, nil, ErrTruncated
	}
	tag := string(data[:4])
	length := binary.BigEndian.Uint32(data[4:headerSize])
	if uint64(len(data)-headerSize) < uint64(length) {
		return Node{}, nil, fmt.Errorf("%w: %q declares %d bytes, %d available", ErrTruncated, tag, length, len(data)-headerSize)
	}
	body := data[headerSize : headerSize+int(length)]
	rest := data[headerSize+int(length):]

	entry, err := c.registry.Lookup(tag)
	if err != nil {
		return Node{}, nil, err
	}
	if length == 0 && !entry.Kind.isContainer() {
		return NewNull(tag), rest, nil
	}

	switch {
	case entry.Kind.isContainer():
		children, err := c.Decode(body)
		if err != nil {
			return Node{}, nil, fmt.Errorf("%s: %w", tag, err)
		}
		return NewContainer(tag, children...), rest, nil
	case entry.Kind == KindString:
		return Node{Tag: tag, Value: Bytes(body)}, rest, nil
	default:
		if len(body) != entry.Kind.Width() {
			return Node{}, nil, fmt.Errorf("tag %q: %s body is %d bytes, want %d", tag, entry.Kind, len(body), entry.Kind.Width())
		}
		return NewInt(tag, readUint(entry.Kind, body)), rest, nil
	}
}

func readUint(kind Kind, body []byte) uint64 {
	switch kind {
	case KindChar:
		return uint64(body[0])
	case KindShort, KindVersion:
		return uint64(binary.BigEndian.Uint16(body))
	case KindLong, KindDate:
		return uint64(binary.BigEndian.Uint32(body))
	case KindLongLong:
		high := uint64(binary.BigEndian.Uint32(body[:4]))
		low := uint64(binary.BigEndian.Uint32(body[4:]))
		return high<<32 | low
	}
	return 0
}
