// Package reconciler owns the authoritative per-article comment forest on
// the viewing side. Every mutation a UI layer can request flows through it:
// it validates input, talks to the CommentAPI collaborator, and applies the
// result to the forest with optimistic-update and rollback semantics. UI
// layers only ever see deep-copied views.
package reconciler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blog-comment-api/internal/metrics"
	"blog-comment-api/internal/tree"
	"blog-comment-api/internal/validation"
)

// Viewer identifies the authenticated user on whose behalf mutations run.
// A nil viewer can read but not mutate.
type Viewer struct {
	ID       int64
	Username string
	Avatar   string
	Role     string
}

// ListOptions selects a page of comments.
type ListOptions struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Snapshot is the read-only per-article state handed to UI layers.
type Snapshot struct {
	Pagination Pagination
	Loading    bool
	LastError  error
}

// articleState holds one article's forest and fetch bookkeeping. mu
// serializes every operation on the article: a mutation holds it across its
// network call, so a fetch can never apply in the middle of one.
type articleState struct {
	mu          sync.Mutex
	forest      tree.Forest
	pagination  Pagination
	loading     bool
	lastErr     error
	fetchGen    uint64
	cancelFetch context.CancelFunc
}

// Reconciler drives fetch-then-merge and the mutation operations for any
// number of articles. Construct one per viewing session.
type Reconciler struct {
	api     CommentAPI
	checker *validation.ContentChecker
	viewer  *Viewer
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	articles map[int64]*articleState
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithViewer sets the authenticated viewer. Without it every mutation fails
// with KindAuthRequired.
func WithViewer(v *Viewer) Option {
	return func(r *Reconciler) { r.viewer = v }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithSensitiveWords replaces the content checker's blocked-word list.
func WithSensitiveWords(words []string) Option {
	return func(r *Reconciler) { r.checker = validation.NewContentChecker(words) }
}

// New creates a Reconciler over the given collaborator.
func New(api CommentAPI, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:      api,
		checker:  validation.NewContentChecker(nil),
		logger:   zap.NewNop(),
		articles: make(map[int64]*articleState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) state(articleID int64) *articleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.articles[articleID]
	if !ok {
		st = &articleState{forest: tree.Forest{}}
		r.articles[articleID] = st
	}
	return st
}

// Forest returns a deep copy of the article's current forest. Mutating the
// returned value never affects reconciler state.
func (r *Reconciler) Forest(articleID int64) tree.Forest {
	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return tree.CloneForest(st.forest)
}

// State returns the article's pagination/loading/error snapshot.
func (r *Reconciler) State(articleID int64) Snapshot {
	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return Snapshot{Pagination: st.pagination, Loading: st.loading, LastError: st.lastErr}
}

// SortComments re-sorts every sibling level of the article's forest. The
// structure never changes, only sibling order.
func (r *Reconciler) SortComments(articleID int64, less tree.Less) {
	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.forest = tree.SortForest(st.forest, less)
}

// FetchComments loads one page from the collaborator and replaces the
// article's forest with the freshly built one, then re-splices any
// provisional (locally created, not yet server-listed) nodes so an
// optimistic reply cannot vanish under a racing fetch.
//
// Starting a fetch supersedes any fetch still in flight for the article:
// the older one is cancelled and its response, should it still arrive, is
// dropped. Last fetch wins by start order, not response arrival order.
func (r *Reconciler) FetchComments(ctx context.Context, articleID int64, opts ListOptions) error {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	st := r.state(articleID)

	st.mu.Lock()
	if st.cancelFetch != nil {
		st.cancelFetch()
	}
	st.fetchGen++
	gen := st.fetchGen
	fetchCtx, cancel := context.WithCancel(ctx)
	st.cancelFetch = cancel
	st.loading = true
	st.mu.Unlock()

	res, err := r.api.ListComments(fetchCtx, articleID, opts.Page, opts.Limit, opts.SortBy, opts.Order)
	cancel()

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.fetchGen != gen {
		// A later fetch started for this article; this response is stale.
		if r.metrics != nil {
			r.metrics.IncrementStaleFetchDropped()
		}
		r.logger.Debug("Dropped stale comment fetch",
			zap.Int64("article_id", articleID),
			zap.Uint64("generation", gen),
		)
		return nil
	}
	st.loading = false
	st.cancelFetch = nil
	if err != nil {
		st.lastErr = err
		return err
	}

	fresh := tree.BuildForest(res.Comments)
	fresh = r.respliceProvisional(st.forest, fresh)
	st.forest = fresh
	st.pagination = res.Pagination
	st.lastErr = nil
	return nil
}

// respliceProvisional carries provisional nodes from the previous forest
// into the freshly fetched one. A provisional node the server page already
// contains is simply confirmed; one it does not contain yet is appended
// back under its parent (or to the roots). A provisional node whose parent
// is absent from the page stays out, same as any orphan.
func (r *Reconciler) respliceProvisional(old, fresh tree.Forest) tree.Forest {
	var provisional []*tree.Comment
	tree.Walk(old, func(c *tree.Comment) {
		if c.Provisional {
			provisional = append(provisional, c)
		}
	})

	for _, p := range provisional {
		if node := tree.Find(fresh, p.ID); node != nil {
			confirmed := false
			fresh = tree.PatchNode(fresh, p.ID, tree.Patch{Provisional: &confirmed})
			continue
		}

		// Detach the provisional subtree from its old surroundings before
		// splicing: children that are themselves confirmed server nodes
		// will arrive through their own pages.
		cp := shallowProvisionalCopy(p)
		if p.ParentID == nil {
			fresh = append(fresh, cp)
		} else if tree.Find(fresh, *p.ParentID) != nil {
			fresh = tree.InsertReply(fresh, *p.ParentID, cp)
		} else {
			continue
		}
		if r.metrics != nil {
			r.metrics.IncrementProvisionalResplice()
		}
	}
	return fresh
}

func shallowProvisionalCopy(c *tree.Comment) *tree.Comment {
	cp := *c
	cp.Replies = []*tree.Comment{}
	if c.ParentID != nil {
		pid := *c.ParentID
		cp.ParentID = &pid
	}
	return &cp
}

// AddRootComment validates content, creates the comment through the
// collaborator and appends it to the forest roots. On any failure the
// forest is untouched and nil is returned with the error.
func (r *Reconciler) AddRootComment(ctx context.Context, articleID int64, content string) (*tree.Comment, error) {
	if err := r.requireViewer(); err != nil {
		return nil, err
	}
	if err := r.checker.Check(content); err != nil {
		return nil, NewError(KindValidation, err.Error(), nil)
	}

	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()

	created, err := r.api.CreateComment(ctx, articleID, content)
	if err != nil {
		return nil, err
	}
	node := markProvisional(created)

	next := tree.CloneForest(st.forest)
	next = append(next, node)
	st.forest = next
	return tree.CloneForest(tree.Forest{node})[0], nil
}

// AddReply creates a reply under parentID. The dangling-parent case is
// detected before the network call; any failure leaves the forest exactly
// as it was.
func (r *Reconciler) AddReply(ctx context.Context, articleID, parentID int64, content string) (*tree.Comment, error) {
	if err := r.requireViewer(); err != nil {
		return nil, err
	}
	if err := r.checker.Check(content); err != nil {
		return nil, NewError(KindValidation, err.Error(), nil)
	}

	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if tree.Find(st.forest, parentID) == nil {
		return nil, NewError(KindDanglingReference, "reply target is not in the current thread", nil)
	}

	created, err := r.api.CreateReply(ctx, parentID, content)
	if err != nil {
		return nil, err
	}
	node := markProvisional(created)

	next := tree.InsertReply(st.forest, parentID, node)
	st.forest = next
	return tree.CloneForest(tree.Forest{tree.Find(next, node.ID)})[0], nil
}

// LikeComment toggles the viewer's like optimistically: the flipped state is
// visible immediately, and a failed network call restores the exact
// pre-action values. A successful call reconciles the node with the
// authoritative count the server returned.
func (r *Reconciler) LikeComment(ctx context.Context, articleID, commentID int64) error {
	if err := r.requireViewer(); err != nil {
		return err
	}

	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()

	node := tree.Find(st.forest, commentID)
	if node == nil {
		return NewError(KindDanglingReference, "comment is not in the current thread", nil)
	}

	prevLiked := node.ViewerHasLiked
	prevCount := node.LikeCount
	nextLiked := !prevLiked
	nextCount := prevCount + 1
	if prevLiked {
		nextCount = prevCount - 1
		if nextCount < 0 {
			nextCount = 0
		}
	}

	res, err := WithOptimisticUpdate(ctx,
		func() {
			st.forest = tree.PatchNode(st.forest, commentID, tree.Patch{
				ViewerHasLiked: &nextLiked,
				LikeCount:      &nextCount,
			})
		},
		func() {
			st.forest = tree.PatchNode(st.forest, commentID, tree.Patch{
				ViewerHasLiked: &prevLiked,
				LikeCount:      &prevCount,
			})
			if r.metrics != nil {
				r.metrics.IncrementOptimisticRollback()
			}
		},
		func(ctx context.Context) (*LikeResult, error) {
			return r.api.ToggleLike(ctx, commentID)
		},
	)
	if err != nil {
		return err
	}

	// Reconcile with the authoritative state.
	st.forest = tree.PatchNode(st.forest, commentID, tree.Patch{
		ViewerHasLiked: &res.Liked,
		LikeCount:      &res.Likes,
	})
	return nil
}

// DeleteComment is not optimistic: removal is hard to roll back visually,
// so the network call goes first and the forest changes only on success.
// The applied mutation matches the server's policy: soft-delete keeps the
// node with content suppressed, hard delete excises the leaf.
func (r *Reconciler) DeleteComment(ctx context.Context, articleID, commentID int64) error {
	if err := r.requireViewer(); err != nil {
		return err
	}

	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if tree.Find(st.forest, commentID) == nil {
		return NewError(KindDanglingReference, "comment is not in the current thread", nil)
	}

	res, err := r.api.DeleteComment(ctx, commentID)
	if err != nil {
		return err
	}

	if res.Soft {
		deleted := true
		st.forest = tree.PatchNode(st.forest, commentID, tree.Patch{IsDeleted: &deleted})
	} else {
		st.forest = tree.RemoveNode(st.forest, commentID)
	}
	return nil
}

// EditComment updates a comment's content with the server-confirmed values.
func (r *Reconciler) EditComment(ctx context.Context, articleID, commentID int64, content string) (*tree.Comment, error) {
	if err := r.requireViewer(); err != nil {
		return nil, err
	}
	if err := r.checker.Check(content); err != nil {
		return nil, NewError(KindValidation, err.Error(), nil)
	}

	st := r.state(articleID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if tree.Find(st.forest, commentID) == nil {
		return nil, NewError(KindDanglingReference, "comment is not in the current thread", nil)
	}

	updated, err := r.api.EditComment(ctx, commentID, content)
	if err != nil {
		return nil, err
	}

	st.forest = tree.PatchNode(st.forest, commentID, tree.Patch{
		Content:   &updated.Content,
		UpdatedAt: &updated.UpdatedAt,
	})
	return tree.CloneForest(tree.Forest{tree.Find(st.forest, commentID)})[0], nil
}

func (r *Reconciler) requireViewer() error {
	if r.viewer == nil {
		return NewError(KindAuthRequired, "sign in to do that", nil)
	}
	return nil
}

func markProvisional(c *tree.Comment) *tree.Comment {
	node := *c
	node.Provisional = true
	node.ClientKey = uuid.New()
	if node.Replies == nil {
		node.Replies = []*tree.Comment{}
	}
	return &node
}
