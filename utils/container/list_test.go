package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/container"
)

func TestListInit(t *testing.T) {
	l := &container.List[int]{}
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
}

func TestListOperation(t *testing.T) {
	l := &container.List[int]{}

	// test: sorted insert

	n1 := &container.ListNode[int]{S: 1, ID: "a"}
	l.Insert(n1)
	n2 := &container.ListNode[int]{S: 2, ID: "b"}
	l.Insert(n2)
	n3 := &container.ListNode[int]{S: 3, ID: "c"}
	l.Insert(n3)
	// 与n1同位置但ID更大，应排在n1之后
	n4 := &container.ListNode[int]{S: 1, ID: "d"}
	l.Insert(n4)
	assert.Equal(t, 4, l.Len())

	// ^, a, d, b, c, ^
	n := l.First()
	assert.Equal(t, n1, n)
	n = n.Next()
	assert.Equal(t, n4, n)
	n = n.Next()
	assert.Equal(t, n2, n)
	assert.Equal(t, n, n.Next().Prev())
	assert.Equal(t, n, n.Prev().Next())
	n = n.Next()
	assert.Equal(t, n3, n)
	assert.Equal(t, n3, l.Last())

	// test: pop merge

	// 原地改键后摘下逆序节点再归并
	n3.S = 0
	n2.S = 5
	unsorted := l.PopUnsorted()
	assert.ElementsMatch(t, []*container.ListNode[int]{n3}, unsorted)
	l.Merge(unsorted)
	assert.Equal(t, []string{"c", "a", "d", "b"}, l.IDs())
	assert.Equal(t, []float64{0, 1, 1, 5}, l.Keys())

	// test: remove

	l.Remove(n2)
	assert.Equal(t, n4, l.Last())
	assert.Equal(t, 3, l.Len())
	assert.Nil(t, n2.Parent())
}

func TestListMergeIntoEmpty(t *testing.T) {
	l := &container.List[int]{}
	nodes := []*container.ListNode[int]{
		{S: 2, ID: "b"},
		{S: 1, ID: "a"},
		{S: 2, ID: "a"},
	}
	l.Merge(nodes)
	assert.Equal(t, []string{"a", "a", "b"}, l.IDs())
	assert.Equal(t, []float64{1, 2, 2}, l.Keys())
}
