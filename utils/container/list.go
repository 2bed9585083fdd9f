package container

import (
	"fmt"
	"log"
	"sort"
)

// ListNode 有序双向链表中的节点
// 说明：按(S, ID)二元组升序排列，S通常是沿边的位置，
// 同一位置上的节点按ID排序以保证查询结果的确定性
type ListNode[T any] struct {
	parent     *List[T]
	prev, next *ListNode[T]
	S          float64 // 排序主键（位置）
	ID         string  // 排序次键
	Value      T       // 节点负载
}

func (n *ListNode[T]) String() string {
	return fmt.Sprintf("Node{S:%v, ID:%v}", n.S, n.ID)
}

// Prev 获取节点的前一个节点，第一个节点返回nil
func (n *ListNode[T]) Prev() *ListNode[T] {
	return n.prev
}

// Next 获取节点的下一个节点，最后一个节点返回nil
func (n *ListNode[T]) Next() *ListNode[T] {
	return n.next
}

// Parent 获取节点所在的链表
func (n *ListNode[T]) Parent() *List[T] {
	return n.parent
}

// before 排序谓词：n是否排在o之前
func (n *ListNode[T]) before(o *ListNode[T]) bool {
	return n.S < o.S || (n.S == o.S && n.ID < o.ID)
}

// insertBefore 在节点前插入新节点
func (n *ListNode[T]) insertBefore(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.parent = n.parent
	add.next = n
	add.prev = n.prev
	n.prev = add
	if add.prev != nil {
		add.prev.next = add
	} else {
		add.parent.head = add
	}
	n.parent.length++
}

// List 有序双向链表
// 功能：维护一条车道上按位置排列的车辆链，支持增量维护
// 说明：节点由调用方持有，跨链表移动时先Remove再Insert
type List[T any] struct {
	ID         string // 链表标识符，用于调试日志
	head, tail *ListNode[T]
	length     int
}

func (l *List[T]) String() string {
	return fmt.Sprintf("List{ID:%v, len:%d}", l.ID, l.length)
}

// Len 获取链表长度
func (l *List[T]) Len() int {
	return l.length
}

// First 获取链表头部节点，空链表返回nil
func (l *List[T]) First() *ListNode[T] {
	return l.head
}

// Last 获取链表尾部节点，空链表返回nil
func (l *List[T]) Last() *ListNode[T] {
	return l.tail
}

// Keys 获取链表中所有节点的排序主键
func (l *List[T]) Keys() []float64 {
	keys := make([]float64, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		keys[i] = node.S
	}
	return keys
}

// Values 获取链表中所有节点的负载
func (l *List[T]) Values() []T {
	values := make([]T, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		values[i] = node.Value
	}
	return values
}

// IDs 获取链表中所有节点的ID
func (l *List[T]) IDs() []string {
	ids := make([]string, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		ids[i] = node.ID
	}
	return ids
}

// pushBack 向链表尾部插入节点
func (l *List[T]) pushBack(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		l.tail.next = add
		add.prev = l.tail
		add.parent = l
		l.tail = add
		l.length++
	}
}

// Insert 按(S, ID)顺序插入节点
// 算法说明：从头部线性扫描到第一个排在add之后的节点并在其前插入，
// 找不到则追加到尾部
func (l *List[T]) Insert(add *ListNode[T]) {
	for node := l.head; node != nil; node = node.next {
		if add.before(node) {
			node.insertBefore(add)
			return
		}
	}
	l.pushBack(add)
}

// Remove 从链表中移除节点
func (l *List[T]) Remove(node *ListNode[T]) {
	if node.parent != l {
		log.Panicf("container: remove node %v from wrong list %v", node, l)
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// PopUnsorted 移除逆序节点
// 功能：节点的S被调用方原地更新后，摘下所有破坏排序的节点
// 返回：被移除的逆序节点数组，应随后通过Merge重新插入
func (l *List[T]) PopUnsorted() (unsorted []*ListNode[T]) {
	for node := l.head; node != nil; {
		next := node.next
		if node.prev != nil && node.before(node.prev) {
			l.Remove(node)
			unsorted = append(unsorted, node)
		}
		node = next
	}
	return unsorted
}

// Merge 批量插入节点
// 算法说明：先对待插入节点排序，再与链表做一次归并
func (l *List[T]) Merge(adds []*ListNode[T]) {
	sort.Slice(adds, func(i, j int) bool { return adds[i].before(adds[j]) })
	node := l.head
	for _, add := range adds {
		for node != nil && node.before(add) {
			node = node.next
		}
		if node != nil {
			node.insertBefore(add)
		} else {
			l.pushBack(add)
		}
	}
}
