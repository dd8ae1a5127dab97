package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// popHead detaches and returns the head of q, or nil if q is empty. Shared
// by selectNextActive (ready queues) and reapExited (exited queue), the
// two places spec.md §4.2/§4.7 pop a queue's head under the critical
// section.
func popHead(q *ill.List[tcb]) *tcb {
	head := ill.GetHead(q)
	if head == nil {
		return nil
	}
	if err := ill.Remove(q, &head.link); err != nil {
		return nil
	}
	return head
}
