package dmap

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"daapshare/internal/logging"
)

const headerSize = 8

// FieldFilter restricts which children of a listing item are encoded. A nil
// filter keeps every child; an empty non-nil filter keeps none.
type FieldFilter map[string]struct{}

// NewFieldFilter builds a filter from tags.
func NewFieldFilter(tags ...string) FieldFilter {
	f := make(FieldFilter, len(tags))
	for _, tag := range tags {
		f[tag] = struct{}{}
	}
	return f
}

// Allows reports whether tag passes the filter.
func (f FieldFilter) Allows(tag string) bool {
	if f == nil {
		return true
	}
	_, ok := f[tag]
	return ok
}

// Codec encodes and decodes tag-trees against a registry.
type Codec struct {
	registry Registry
	logger   *slog.Logger
}

// NewCodec returns a codec bound to registry. A nil logger discards output.
func NewCodec(registry Registry, logger *slog.Logger) *Codec {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Codec{
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "dmap"),
	}
}

// Registry returns the registry the codec encodes against.
func (c *Codec) Registry() Registry { return c.registry }

// Encode serializes n and its descendants. filter applies to every listing
// item in the tree.
func (c *Codec) Encode(n Node, filter FieldFilter) ([]byte, error) {
	return c.AppendNode(nil, n, filter)
}

// AppendNode appends the encoding of n to dst.
func (c *Codec) AppendNode(dst []byte, n Node, filter FieldFilter) ([]byte, error) {
	if len(n.Tag) != 4 {
		return dst, fmt.Errorf("%w: %q", ErrInvalidTag, n.Tag)
	}
	entry, err := c.registry.Lookup(n.Tag)
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, n.Tag...)
	dst = append(dst, 0, 0, 0, 0)

	if n.Value.IsNull() {
		c.logger.Debug("encoding null value", logging.String("tag", n.Tag))
		return dst, nil
	}

	dst, err = c.appendValue(dst, n, entry, filter)
	if err != nil {
		return dst[:start], err
	}

	length := len(dst) - start - headerSize
	if uint64(length) > math.MaxUint32 {
		return dst[:start], fmt.Errorf("tag %q: value length %d exceeds frame limit", n.Tag, length)
	}
	binary.BigEndian.PutUint32(dst[start+4:start+headerSize], uint32(length))
	return dst, nil
}

func (c *Codec) appendValue(dst []byte, n Node, entry Entry, filter FieldFilter) ([]byte, error) {
	v := n.Value
	switch entry.Kind {
	case KindContainer, KindListingItem:
		if !v.IsContainer() {
			return dst, &ValueKindError{Tag: n.Tag, Kind: entry.Kind, Value: v.kind.String()}
		}
		var err error
		for _, child := range v.children {
			if entry.Kind == KindListingItem && !filter.Allows(child.Tag) {
				continue
			}
			if dst, err = c.AppendNode(dst, child, filter); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case KindString:
		if v.kind != valueBytes {
			return dst, &ValueKindError{Tag: n.Tag, Kind: entry.Kind, Value: v.kind.String()}
		}
		return append(dst, v.raw...), nil
	case KindChar, KindShort, KindVersion, KindLong, KindDate, KindLongLong:
		num, ok := v.Uint()
		if !ok {
			return dst, &ValueKindError{Tag: n.Tag, Kind: entry.Kind, Value: v.kind.String()}
		}
		return appendUint(dst, entry.Kind, num), nil
	default:
		return dst, fmt.Errorf("tag %q: unsupported kind %s", n.Tag, entry.Kind)
	}
}

func appendUint(dst []byte, kind Kind, v uint64) []byte {
	switch kind {
	case KindChar:
		return append(dst, byte(v))
	case KindShort, KindVersion:
		return binary.BigEndian.AppendUint16(dst, uint16(v))
	case KindLong, KindDate:
		return binary.BigEndian.AppendUint32(dst, uint32(v))
	case KindLongLong:
		// Two big-endian 32-bit words, high first.
		dst = binary.BigEndian.AppendUint32(dst, uint32(v>>32))
		return binary.BigEndian.AppendUint32(dst, uint32(v&0xffffffff))
	}
	return dst
}
