// Package ill implements the intrusive doubly-linked list shared by every
// queue in the kernel: the ready lists, the delayed/blocked/exited lists,
// and each semaphore's waiter list.
//
// A list is represented by an opaque handle that either is empty or
// designates one element as "head". Elements form a circular doubly linked
// ring via their embedded Link. An element may be a member of at most one
// list at a time; this is an invariant the caller must uphold, not something
// the package enforces.
package ill

// Link is embedded in a payload type to make it a member of a List. Queue
// membership is tracked entirely through prev/next pointers, so insertion
// and removal never allocate.
type Link[T any] struct {
	prev, next *Link[T]
	value      *T
}

// List is an opaque handle to a ring of Links. The zero value is an empty
// list.
type List[T any] struct {
	head *Link[T]
}

// Empty reports whether the list has no members.
func (l *List[T]) Empty() bool {
	return l.head == nil
}

// Reset clears a Link so it no longer claims membership in any list. Used
// when detaching an element whose list is being torn down out of band (e.g.
// destroying a task that currently sits in a queue).
func (link *Link[T]) Reset() {
	link.prev, link.next, link.value = nil, nil, nil
}

// InList reports whether link currently claims membership in some list.
func (link *Link[T]) InList() bool {
	return link.next != nil
}

// Append inserts elem (via its embedded link) as the new tail of the list.
// Fails if link or elem is nil.
func Append[T any](l *List[T], elem *T, link *Link[T]) error {
	return add(l, elem, link, false)
}

// Prepend inserts elem as the new head of the list.
func Prepend[T any](l *List[T], elem *T, link *Link[T]) error {
	return add(l, elem, link, true)
}

func add[T any](l *List[T], elem *T, link *Link[T], prepend bool) error {
	if l == nil || elem == nil || link == nil {
		return errNilArg
	}
	link.value = elem
	if l.head == nil {
		link.prev, link.next = link, link
		l.head = link
		return nil
	}
	head := l.head
	tail := head.prev
	head.prev = link
	link.next = head
	link.prev = tail
	tail.next = link
	if prepend {
		l.head = link
	}
	return nil
}

// IterFunc is called with each element in ring order, starting at the head.
// Returning true ("brk") stops iteration at that element.
type IterFunc[T any] func(elem *T) bool

// Iterate visits each element's container in ring order starting at head,
// stopping when fn returns true or the ring is exhausted. It returns the
// last element visited (not the one after it), or nil for an empty list.
func Iterate[T any](l *List[T], fn IterFunc[T]) *T {
	if l == nil || l.head == nil || fn == nil {
		return nil
	}
	head := l.head
	cur := head
	for {
		brk := fn(cur.value)
		last := cur
		cur = cur.next
		if brk || cur == head {
			return last.value
		}
	}
}

// Remove detaches link from the list. If link was the sole member, the
// result is an empty list; if it was the head, head advances to next. The
// caller retains ownership of the underlying element.
func Remove[T any](l *List[T], link *Link[T]) error {
	if l == nil || link == nil || link.next == nil {
		return errNilArg
	}
	if link.next == link {
		// Sole member.
		l.head = nil
	} else {
		if l.head == link {
			l.head = link.next
		}
		link.prev.next = link.next
		link.next.prev = link.prev
	}
	link.Reset()
	return nil
}

// GetHead returns the head element without detaching it, or nil if empty.
func GetHead[T any](l *List[T]) *T {
	if l == nil || l.head == nil {
		return nil
	}
	return l.head.value
}

// GetTail returns the tail element without detaching it, or nil if empty.
func GetTail[T any](l *List[T]) *T {
	if l == nil || l.head == nil {
		return nil
	}
	return l.head.prev.value
}
