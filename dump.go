package art

import (
	"bytes"
	"fmt"
	"strings"
)

// Dump renders the tree as an indented text tree for debugging. For a tree
// of String keys with keys/values [A, a, aa, bar] it outputs:
//
//	─── node4
//	     prefix: ""
//	     children(3): 0x416162
//	    ├── Leaf
//	    │    key: A
//	    │    val: A
//	    ├── node4
//	    │    prefix: ""
//	    │    children(2): 0x0061
//	    │   ├── Leaf
//	    │   │    key: a
//	    │   │    val: a
//	    │   └── Leaf
//	    │        key: aa
//	    │        val: aa
//	    └── Leaf
//	         key: bar
//	         val: bar
//
// Dump does not validate node versions; it is a best-effort snapshot and is
// only meant for debugging and tests, never for production code paths.
func (t *Tree[K, V]) Dump() string {
	d := &dumper[K, V]{buf: bytes.NewBufferString("")}
	d.dumpNode(t.root.Load())
	return d.buf.String()
}

type dumper[K Key, V any] struct {
	buf         *bytes.Buffer
	childStack []int
}

func (d *dumper[K, V]) padding() (string, string) {
	depth := len(d.childStack)
	if depth == 0 {
		return "───", "    "
	}
	pad := "    " + strings.Repeat("│   ", depth-1)

	head := "├──"
	finalPad := "│   "
	if d.childStack[depth-1] == 1 {
		head = "└──"
		finalPad = "    "
	}
	return pad + head, pad + finalPad
}

func (d *dumper[K, V]) pushNChildren(n int) { d.childStack = append(d.childStack, n) }
func (d *dumper[K, V]) decNChildren()       { d.childStack[len(d.childStack)-1]-- }
func (d *dumper[K, V]) popNChildren()       { d.childStack = d.childStack[:len(d.childStack)-1] }

// childBytes returns, in ascending byte order, every populated (byte, child)
// pair under an inner node - the one piece of per-class knowledge Dump needs
// that the rest of the package doesn't otherwise expose as a single ordered
// walk.
func childBytes[K Key, V any](n *artNode[K, V]) ([]byte, []*artNode[K, V]) {
	switch n.kind {
	case kindNode4:
		nn := n.asNode4()
		count := nn.header.numChildren
		bs := append([]byte(nil), nn.keys[:count]...)
		cs := make([]*artNode[K, V], count)
		for i := range cs {
			cs[i] = nn.children[i].Load()
		}
		return bs, cs
	case kindNode16:
		nn := n.asNode16()
		count := nn.header.numChildren
		bs := append([]byte(nil), nn.keys[:count]...)
		cs := make([]*artNode[K, V], count)
		for i := range cs {
			cs[i] = nn.children[i].Load()
		}
		return bs, cs
	case kindNode48:
		nn := n.asNode48()
		var bs []byte
		var cs []*artNode[K, V]
		for b := 0; b < 256; b++ {
			if i := nn.index[b]; i > 0 {
				bs = append(bs, byte(b))
				cs = append(cs, nn.children[i-1].Load())
			}
		}
		return bs, cs
	case kindNode256:
		nn := n.asNode256()
		var bs []byte
		var cs []*artNode[K, V]
		for b := 0; b < 256; b++ {
			if c := nn.children[b].Load(); c != nil {
				bs = append(bs, byte(b))
				cs = append(cs, c)
			}
		}
		return bs, cs
	default:
		return nil, nil
	}
}

func kindName(k nodeKind) string {
	switch k {
	case kindNode4:
		return "node4"
	case kindNode16:
		return "node16"
	case kindNode48:
		return "node48"
	case kindNode256:
		return "node256"
	default:
		return "?"
	}
}

func (d *dumper[K, V]) dumpNode(n *artNode[K, V]) {
	headerPad, pad := d.padding()

	if n.isEmpty() {
		fmt.Fprintf(d.buf, "%s <empty>\n", headerPad)
		return
	}

	if n.isLeaf() {
		leaf := n.asLeaf()
		fmt.Fprintf(d.buf, "%s Leaf\n", headerPad)
		fmt.Fprintf(d.buf, "%s key: %v\n", pad, leaf.key)
		fmt.Fprintf(d.buf, "%s val: %v\n", pad, leaf.value)
		return
	}

	h := n.header()
	fmt.Fprintf(d.buf, "%s %s\n", headerPad, kindName(n.kind))
	fmt.Fprintf(d.buf, "%s prefix: %q\n", pad, h.storedPrefix())
	if h.isOptimistic() {
		fmt.Fprintf(d.buf, "%s prefixLen: %d (optimistic)\n", pad, h.prefixLen)
	}

	bs, cs := childBytes[K, V](n)
	fmt.Fprintf(d.buf, "%s children(%d): %#x\n", pad, len(bs), bs)

	d.pushNChildren(len(cs))
	for _, child := range cs {
		d.dumpNode(child)
		d.decNChildren()
	}
	d.popNChildren()
}
