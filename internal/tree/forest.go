// Package tree holds the in-memory comment forest for an article and the
// pure operations over it: building a forest from a flat page, inserting,
// patching and removing nodes, and re-sorting siblings. All operations are
// copy-on-write so callers can keep earlier forest references for rollback.
package tree

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Author is a read-only snapshot of the commenting user.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Comment is a node of an article's comment forest. In the flat wire
// representation Replies is nil and ParentID carries the threading; in the
// nested representation every node has a non-nil Replies slice.
type Comment struct {
	ID             int64      `json:"id"`
	ArticleID      int64      `json:"article_id"`
	ParentID       *int64     `json:"parent_id,omitempty"`
	Content        string     `json:"content"`
	Author         Author     `json:"user"`
	LikeCount      int        `json:"likes"`
	ViewerHasLiked bool       `json:"is_liked"`
	IsDeleted      bool       `json:"deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Replies        []*Comment `json:"replies,omitempty"`

	// Provisional marks a node created locally that has not yet been
	// observed in a server page. ClientKey keeps its identity stable
	// across forest rebuilds.
	Provisional bool      `json:"-"`
	ClientKey   uuid.UUID `json:"-"`
}

// Forest is the ordered sequence of root comments for one article.
type Forest []*Comment

// CloneForest returns a deep copy of the forest. The copy shares nothing
// with the original, so mutating one never affects the other.
func CloneForest(f Forest) Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, 0, len(f))
	if err := copier.CopyWithOption(&out, &f, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on invalid (non-addressable) arguments,
		// which cannot happen here; fall back to a manual walk.
		out = out[:0]
		for _, root := range f {
			out = append(out, cloneComment(root))
		}
	}
	return out
}

// cloneComment deep-copies a single node and its subtree.
func cloneComment(c *Comment) *Comment {
	if c == nil {
		return nil
	}
	cp := *c
	if c.ParentID != nil {
		pid := *c.ParentID
		cp.ParentID = &pid
	}
	if c.Replies != nil {
		cp.Replies = make([]*Comment, 0, len(c.Replies))
		for _, r := range c.Replies {
			cp.Replies = append(cp.Replies, cloneComment(r))
		}
	}
	return &cp
}

// Find returns the node with the given id, or nil. The returned pointer
// aliases the forest; callers that need an independent value must clone it.
// The walk is iterative so pathologically deep reply chains cannot blow the
// stack.
func Find(f Forest, id int64) *Comment {
	stack := make([]*Comment, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, f[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, n.Replies[i])
		}
	}
	return nil
}

// Walk visits every node depth-first in sibling order, iteratively.
func Walk(f Forest, visit func(*Comment)) {
	stack := make([]*Comment, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, f[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, n.Replies[i])
		}
	}
}

// Size returns the number of nodes reachable in the forest.
func Size(f Forest) int {
	n := 0
	Walk(f, func(*Comment) { n++ })
	return n
}
