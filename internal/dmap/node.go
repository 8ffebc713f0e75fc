package dmap

type valueKind uint8

const (
	valueNull valueKind = iota
	valueInt
	valueBytes
	valueChildren
)

func (k valueKind) String() string {
	switch k {
	case valueInt:
		return "integer"
	case valueBytes:
		return "string"
	case valueChildren:
		return "children"
	default:
		return "null"
	}
}

// Value is the payload of a Node: null, an unsigned integer, a byte string,
// or an ordered list of child nodes. The zero Value is null.
type Value struct {
	kind     valueKind
	num      uint64
	raw      []byte
	children []Node
}

// Null returns the empty value.
func Null() Value { return Value{} }

// Int returns an integer value. Narrow kinds keep the low-order bytes.
func Int(v uint64) Value { return Value{kind: valueInt, num: v} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: valueBytes, raw: []byte(s)} }

// Bytes returns a raw byte value. The slice is copied.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: valueBytes, raw: cp}
}

// Children returns a container value holding nodes in order.
func Children(nodes ...Node) Value {
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return Value{kind: valueChildren, children: cp}
}

// IsNull reports whether the value is empty.
func (v Value) IsNull() bool { return v.kind == valueNull }

// IsContainer reports whether the value holds child nodes.
func (v Value) IsContainer() bool { return v.kind == valueChildren }

// Uint returns the integer payload and whether the value is an integer.
func (v Value) Uint() (uint64, bool) { return v.num, v.kind == valueInt }

// Text returns the string payload and whether the value is a string.
func (v Value) Text() (string, bool) { return string(v.raw), v.kind == valueBytes }

// Nodes returns the children of a container value.
func (v Value) Nodes() []Node { return v.children }

// Node is one element of a tag-tree.
type Node struct {
	Tag   string
	Value Value
}

// NewNull builds a leaf whose value is absent.
func NewNull(tag string) Node { return Node{Tag: tag} }

// NewInt builds an integer leaf.
func NewInt(tag string, v uint64) Node { return Node{Tag: tag, Value: Int(v)} }

// NewString builds a string leaf.
func NewString(tag, s string) Node { return Node{Tag: tag, Value: Str(s)} }

// NewContainer builds a container node.
func NewContainer(tag string, children ...Node) Node {
	return Node{Tag: tag, Value: Children(children...)}
}

// IsContainer reports whether the node holds children.
func (n Node) IsContainer() bool { return n.Value.IsContainer() }

// Append adds child to a container node. Appending to a null node turns it
// into an empty container first; appending to a scalar leaf panics.
func (n *Node) Append(child ...Node) {
	switch n.Value.kind {
	case valueNull:
		n.Value = Value{kind: valueChildren}
	case valueChildren:
	default:
		panic("dmap: append to leaf node " + n.Tag)
	}
	n.Value.children = append(n.Value.children, child...)
}

// Len returns the number of children.
func (n Node) Len() int { return len(n.Value.children) }

// Child returns the first direct child tagged tag.
func (n Node) Child(tag string) (Node, bool) {
	for _, c := range n.Value.children {
		if c.Tag == tag {
			return c, true
		}
	}
	return Node{}, false
}
