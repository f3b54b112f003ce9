package tree

import "sort"

// Less orders two sibling comments.
type Less func(a, b *Comment) bool

// ByNewest orders siblings newest-first.
func ByNewest(a, b *Comment) bool { return a.CreatedAt.After(b.CreatedAt) }

// ByOldest orders siblings oldest-first.
func ByOldest(a, b *Comment) bool { return a.CreatedAt.Before(b.CreatedAt) }

// ByMostLiked orders siblings by descending like count.
func ByMostLiked(a, b *Comment) bool { return a.LikeCount > b.LikeCount }

// SortForest returns a new forest with every sibling sequence, at every
// depth, reordered by less. Parent/child relationships never change and the
// sort is stable, so equal siblings keep their relative order.
func SortForest(f Forest, less Less) Forest {
	next := CloneForest(f)
	sortSiblings(next, less)

	stack := make([]*Comment, 0, len(next))
	for i := len(next) - 1; i >= 0; i-- {
		stack = append(stack, next[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sortSiblings(n.Replies, less)
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, n.Replies[i])
		}
	}
	return next
}

func sortSiblings(siblings []*Comment, less Less) {
	sort.SliceStable(siblings, func(i, j int) bool {
		return less(siblings[i], siblings[j])
	})
}
