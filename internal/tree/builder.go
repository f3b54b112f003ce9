package tree

// BuildForest converts a flat comment page into a rooted forest.
//
// If the input already encodes a forest (every element is a root and carries
// a non-nil Replies slice) it is returned as a deep copy without re-deriving
// the parent/child links, so a caller can round-trip a cached nested forest
// through this function without corrupting it.
//
// Otherwise each comment gets a fresh empty Replies slice, children are
// appended to their parent in input order, and comments whose parent id is
// not present in the input are dropped: promoting an orphan to root would
// misrepresent the thread structure, so a child of a not-yet-fetched parent
// stays invisible until the parent arrives.
//
// The input is never mutated and the output shares no nodes with it.
func BuildForest(flat []*Comment) Forest {
	if len(flat) == 0 {
		return Forest{}
	}

	if isNested(flat) {
		return CloneForest(Forest(flat))
	}

	byID := make(map[int64]*Comment, len(flat))
	copies := make([]*Comment, 0, len(flat))
	for _, c := range flat {
		cp := cloneComment(c)
		cp.Replies = []*Comment{}
		copies = append(copies, cp)
		byID[cp.ID] = cp
	}

	forest := Forest{}
	for _, cp := range copies {
		if cp.ParentID == nil {
			forest = append(forest, cp)
			continue
		}
		parent, ok := byID[*cp.ParentID]
		if !ok {
			// Orphan: parent not in this page. Dropped, not promoted.
			continue
		}
		parent.Replies = append(parent.Replies, cp)
	}
	return forest
}

// isNested reports whether the input is already a valid nested forest:
// every element is root-level and has an initialized Replies slice.
func isNested(flat []*Comment) bool {
	for _, c := range flat {
		if c.ParentID != nil || c.Replies == nil {
			return false
		}
	}
	return true
}

// Flatten is the inverse of BuildForest: a depth-first walk emitting every
// node as a flat record with ParentID set and Replies cleared. Sibling order
// is preserved, so BuildForest(Flatten(f)) reproduces f.
func Flatten(f Forest) []*Comment {
	out := make([]*Comment, 0, Size(f))

	type frame struct {
		node   *Comment
		parent *int64
	}
	stack := make([]frame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: f[i]})
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cp := *fr.node
		cp.Replies = nil
		if fr.parent != nil {
			pid := *fr.parent
			cp.ParentID = &pid
		} else {
			cp.ParentID = nil
		}
		out = append(out, &cp)

		id := fr.node.ID
		for i := len(fr.node.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: fr.node.Replies[i], parent: &id})
		}
	}
	return out
}
