package tree

import (
	"time"
)

// Patch is a typed partial update for a single node. Only non-nil fields are
// applied, so a caller states exactly which fields change and nothing else
// can be smuggled in.
type Patch struct {
	Content        *string
	LikeCount      *int
	ViewerHasLiked *bool
	IsDeleted      *bool
	Provisional    *bool
	UpdatedAt      *time.Time
}

// InsertReply returns a new forest with reply appended to the Replies of the
// node whose id is parentID. If no node matches, the input forest is
// returned unchanged (same reference) so the caller can detect the dangling
// reference. Sibling order elsewhere is untouched and the input forest is
// never mutated.
func InsertReply(f Forest, parentID int64, reply *Comment) Forest {
	if Find(f, parentID) == nil {
		return f
	}
	next := CloneForest(f)
	parent := Find(next, parentID)
	cp := cloneComment(reply)
	if cp.Replies == nil {
		cp.Replies = []*Comment{}
	}
	pid := parentID
	cp.ParentID = &pid
	parent.Replies = append(parent.Replies, cp)
	return next
}

// PatchNode returns a new forest with the patch merged over the node whose
// id is targetID. Unmatched id returns the input forest unchanged.
func PatchNode(f Forest, targetID int64, patch Patch) Forest {
	if Find(f, targetID) == nil {
		return f
	}
	next := CloneForest(f)
	node := Find(next, targetID)
	if patch.Content != nil {
		node.Content = *patch.Content
	}
	if patch.LikeCount != nil {
		node.LikeCount = *patch.LikeCount
	}
	if patch.ViewerHasLiked != nil {
		node.ViewerHasLiked = *patch.ViewerHasLiked
	}
	if patch.IsDeleted != nil {
		node.IsDeleted = *patch.IsDeleted
	}
	if patch.Provisional != nil {
		node.Provisional = *patch.Provisional
	}
	if patch.UpdatedAt != nil {
		node.UpdatedAt = *patch.UpdatedAt
	}
	return next
}

// RemoveNode returns a new forest with the node whose id is targetID excised
// together with its whole subtree, either from its parent's Replies or from
// the root sequence. Unmatched id returns the input forest unchanged.
//
// Subtree excision is deliberate: callers that need to keep reply structure
// under a removed comment soft-delete it through PatchNode instead, and only
// excise leaves.
func RemoveNode(f Forest, targetID int64) Forest {
	if Find(f, targetID) == nil {
		return f
	}
	next := CloneForest(f)

	if idx := indexOf(next, targetID); idx >= 0 {
		next = append(next[:idx], next[idx+1:]...)
		return next
	}

	stack := make([]*Comment, 0, len(next))
	for i := len(next) - 1; i >= 0; i-- {
		stack = append(stack, next[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if idx := indexOf(n.Replies, targetID); idx >= 0 {
			n.Replies = append(n.Replies[:idx], n.Replies[idx+1:]...)
			return next
		}
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, n.Replies[i])
		}
	}
	return next
}

func indexOf(siblings []*Comment, id int64) int {
	for i, c := range siblings {
		if c.ID == id {
			return i
		}
	}
	return -1
}
