package art

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode48FindChild(t *testing.T) {
	n := newNode48[String, string]()
	require.Nil(t, n.findChild('a'))

	n.addChild('f', mkLeaf("foo"))
	n.addChild('b', mkLeaf("bar"))
	require.Equal(t, "foo", leafKey(t, n.findChild('f')))
	require.Equal(t, "bar", leafKey(t, n.findChild('b')))
	require.Nil(t, n.findChild('z'))
}

func TestNode48SetChildOverwrites(t *testing.T) {
	n := newNode48[String, string]()
	n.addChild('f', mkLeaf("foo"))
	n.setChild('f', mkLeaf("FOO"))
	require.Equal(t, "FOO", leafKey(t, n.findChild('f')))
	require.Equal(t, uint8(1), n.header.numChildren)
}

func TestNode48RemoveChildKeepsChildrenDense(t *testing.T) {
	n := newNode48[String, string]()
	for _, c := range []byte{'a', 'b', 'c', 'd'} {
		n.addChild(c, mkLeaf(string(c)))
	}
	// Remove the first-added entry; its slot (0) should be backfilled by the
	// last occupied slot rather than left with a hole.
	n.removeChild('a')
	require.Equal(t, uint8(3), n.header.numChildren)
	require.Nil(t, n.findChild('a'))
	for _, c := range []byte{'b', 'c', 'd'} {
		require.Equal(t, string(c), leafKey(t, n.findChild(c)))
	}
	for i := uint8(0); i < n.header.numChildren; i++ {
		require.NotNil(t, n.children[i].Load(), "slot %d must stay dense", i)
	}
}

func TestNode48GrowToNode256(t *testing.T) {
	n := newNode48[String, string]()
	n.header.setPrefix([]byte("z"))
	for i := 0; i < 20; i++ {
		c := byte('a' + i)
		n.addChild(c, mkLeaf(string(c)))
	}

	grown := n.grow()
	require.Equal(t, kindNode256, grown.kind)
	n256 := grown.asNode256()
	require.Equal(t, uint8(20), n256.header.numChildren)
	require.Equal(t, []byte("z"), n256.header.storedPrefix())
	for i := 0; i < 20; i++ {
		c := byte('a' + i)
		require.Equal(t, string(c), leafKey(t, n256.findChild(c)))
	}
}

func TestNode48ShrinkToNode16(t *testing.T) {
	n := newNode48[String, string]()
	for i := 0; i < 10; i++ {
		c := byte('a' + i)
		n.addChild(c, mkLeaf(string(c)))
	}

	shrunk := n.shrink()
	require.Equal(t, kindNode16, shrunk.kind)
	n16 := shrunk.asNode16()
	require.Equal(t, uint8(10), n16.header.numChildren)
	for i := 0; i < 10; i++ {
		c := byte('a' + i)
		require.Equal(t, string(c), leafKey(t, n16.findChild(c)))
	}
}
