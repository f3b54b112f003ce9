package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForest() Forest {
	return BuildForest([]*Comment{
		flatComment(1, nil),
		flatComment(2, ptr(1)),
		flatComment(3, ptr(2)),
		flatComment(4, ptr(1)),
		flatComment(5, nil),
	})
}

func TestInsertReply_AppendsAtAnyDepth(t *testing.T) {
	forest := sampleForest()
	reply := flatComment(6, nil)

	next := InsertReply(forest, 3, reply)

	require.NotNil(t, Find(next, 6))
	node := Find(next, 3)
	require.Len(t, node.Replies, 1)
	assert.Equal(t, int64(6), node.Replies[0].ID)
	require.NotNil(t, node.Replies[0].ParentID)
	assert.Equal(t, int64(3), *node.Replies[0].ParentID)

	// No other node's replies changed.
	assert.Len(t, Find(next, 1).Replies, 2)
	assert.Len(t, Find(next, 2).Replies, 1)
	assert.Empty(t, Find(next, 4).Replies)
	assert.Empty(t, Find(next, 5).Replies)
}

func TestInsertReply_MissingParentReturnsSameForest(t *testing.T) {
	forest := sampleForest()

	next := InsertReply(forest, 999, flatComment(6, nil))

	assert.Same(t, &forest[0], &next[0], "unmatched parent must return the identical forest")
	assert.Equal(t, 5, Size(next))
}

func TestInsertReply_DoesNotMutateOriginal(t *testing.T) {
	forest := sampleForest()
	before := CloneForest(forest)

	_ = InsertReply(forest, 1, flatComment(6, nil))

	assert.Equal(t, before, forest)
}

func TestPatchNode_MergesOnlySpecifiedFields(t *testing.T) {
	forest := sampleForest()
	content := "edited"
	likes := 7

	next := PatchNode(forest, 2, Patch{Content: &content, LikeCount: &likes})

	node := Find(next, 2)
	assert.Equal(t, "edited", node.Content)
	assert.Equal(t, 7, node.LikeCount)
	assert.False(t, node.IsDeleted, "unspecified fields keep their values")
	assert.Equal(t, Find(forest, 2).CreatedAt, node.CreatedAt)

	// Original untouched.
	assert.Equal(t, "comment", Find(forest, 2).Content)
}

func TestPatchNode_UnmatchedIDIsNoOp(t *testing.T) {
	forest := sampleForest()
	deleted := true

	next := PatchNode(forest, 999, Patch{IsDeleted: &deleted})

	assert.Same(t, &forest[0], &next[0])
}

func TestRemoveNode_ExcisesSubtree(t *testing.T) {
	forest := sampleForest()

	next := RemoveNode(forest, 2)

	assert.Nil(t, Find(next, 2))
	assert.Nil(t, Find(next, 3), "the removed node's replies go with it")
	assert.NotNil(t, Find(next, 4))
	assert.Equal(t, 3, Size(next))
	assert.Equal(t, 5, Size(forest), "original keeps the subtree")
}

func TestRemoveNode_RemovesRoot(t *testing.T) {
	forest := sampleForest()

	next := RemoveNode(forest, 5)

	require.Len(t, next, 1)
	assert.Equal(t, int64(1), next[0].ID)
}

func TestRemoveNode_PreservesSiblingOrder(t *testing.T) {
	forest := BuildForest([]*Comment{
		flatComment(1, nil),
		flatComment(2, ptr(1)),
		flatComment(3, ptr(1)),
		flatComment(4, ptr(1)),
	})

	next := RemoveNode(forest, 3)

	replies := Find(next, 1).Replies
	require.Len(t, replies, 2)
	assert.Equal(t, int64(2), replies[0].ID)
	assert.Equal(t, int64(4), replies[1].ID)
}

func TestSortForest_ReordersSiblingsOnly(t *testing.T) {
	forest := sampleForest()
	// Bump likes so the order flips at both levels.
	likes := func(id int64, n int) {
		Find(forest, id).LikeCount = n
	}
	likes(5, 10)
	likes(4, 3)

	next := SortForest(forest, ByMostLiked)

	assert.Equal(t, int64(5), next[0].ID)
	assert.Equal(t, int64(1), next[1].ID)
	replies := Find(next, 1).Replies
	require.Len(t, replies, 2)
	assert.Equal(t, int64(4), replies[0].ID)
	assert.Equal(t, int64(2), replies[1].ID)
	// Nested structure intact.
	require.Len(t, Find(next, 2).Replies, 1)
	assert.Equal(t, int64(3), Find(next, 2).Replies[0].ID)
}

func TestSortForest_IsStableForEqualSiblings(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := flatComment(1, nil)
	b := flatComment(2, nil)
	c := flatComment(3, nil)
	a.CreatedAt, b.CreatedAt, c.CreatedAt = ts, ts, ts
	forest := BuildForest([]*Comment{a, b, c})

	next := SortForest(forest, ByNewest)

	assert.Equal(t, []int64{1, 2, 3}, []int64{next[0].ID, next[1].ID, next[2].ID})
}
