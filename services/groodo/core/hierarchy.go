package core

import "context"

// ParentFunc returns the parent of id, nil for a root. It must return a
// not-found error for an id the caller does not own.
type ParentFunc func(ctx context.Context, id int64) (*int64, error)

// ChildrenFunc returns the direct children of id.
type ChildrenFunc func(ctx context.Context, id int64) ([]int64, error)

// Hierarchy validates a self-referential parent pointer with a depth bound.
// Depth is counted in hops to the root; a root has depth 0. Every walk stops
// after MaxDepth+1 hops, anything deeper is invalid already.
type Hierarchy struct {
	MaxDepth int

	parentOf   ParentFunc
	childrenOf ChildrenFunc
}

func NewHierarchy(maxDepth int, parentOf ParentFunc, childrenOf ChildrenFunc) *Hierarchy {
	return &Hierarchy{
		MaxDepth:   maxDepth,
		parentOf:   parentOf,
		childrenOf: childrenOf,
	}
}

func (h *Hierarchy) walkLimit() int {
	return h.MaxDepth + 1
}

// DepthOf returns the number of hops from id to its root, at most MaxDepth+1.
func (h *Hierarchy) DepthOf(ctx context.Context, id int64) (int, error) {
	depth := 0
	cur := id
	for depth < h.walkLimit() {
		parent, err := h.parentOf(ctx, cur)
		if err != nil {
			return 0, err
		}
		if parent == nil {
			return depth, nil
		}
		depth++
		cur = *parent
	}
	return depth, nil
}

// HeightOf returns the length of the longest chain below id, at most MaxDepth+1.
func (h *Hierarchy) HeightOf(ctx context.Context, id int64) (int, error) {
	level := []int64{id}
	height := 0
	for height < h.walkLimit() {
		var next []int64
		for _, node := range level {
			children, err := h.childrenOf(ctx, node)
			if err != nil {
				return 0, err
			}
			next = append(next, children...)
		}
		if len(next) == 0 {
			return height, nil
		}
		height++
		level = next
	}
	return height, nil
}

// CanAttachChild reports whether a new leaf under parentID stays within
// MaxDepth. A missing parent is an error, not false.
func (h *Hierarchy) CanAttachChild(ctx context.Context, parentID int64) (bool, error) {
	return h.CanAttachSubtree(ctx, parentID, 0)
}

// CanAttachSubtree is CanAttachChild for a node that already has
// descendants down to height levels below it.
func (h *Hierarchy) CanAttachSubtree(ctx context.Context, parentID int64, height int) (bool, error) {
	depth, err := h.DepthOf(ctx, parentID)
	if err != nil {
		return false, err
	}
	return depth+1+height <= h.MaxDepth, nil
}

// WouldCreateCycle reports whether making proposedParentID the parent of id
// would close a loop. A walk that outruns the limit is treated as a cycle.
func (h *Hierarchy) WouldCreateCycle(ctx context.Context, id, proposedParentID int64) (bool, error) {
	if IsSelfParent(id, proposedParentID) {
		return true, nil
	}

	cur := proposedParentID
	for hops := 0; hops <= h.walkLimit(); hops++ {
		parent, err := h.parentOf(ctx, cur)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		if *parent == id {
			return true, nil
		}
		cur = *parent
	}
	return true, nil
}

func IsSelfParent(id, proposedParentID int64) bool {
	return id == proposedParentID
}

func taskHierarchy(repo TaskRepository, userID int64) *Hierarchy {
	return NewHierarchy(MaxTaskDepth,
		func(ctx context.Context, id int64) (*int64, error) {
			t, err := repo.GetTask(ctx, id, userID)
			if err != nil {
				return nil, err
			}
			return t.ParentID, nil
		},
		func(ctx context.Context, id int64) ([]int64, error) {
			children, err := repo.ListChildTasks(ctx, id, userID)
			if err != nil {
				return nil, err
			}
			ids := make([]int64, 0, len(children))
			for _, c := range children {
				ids = append(ids, c.ID)
			}
			return ids, nil
		},
	)
}

func documentHierarchy(repo DocumentRepository, userID int64) *Hierarchy {
	return NewHierarchy(MaxDocumentDepth,
		func(ctx context.Context, id int64) (*int64, error) {
			d, err := repo.GetDocument(ctx, id, userID)
			if err != nil {
				return nil, err
			}
			return d.ParentID, nil
		},
		func(ctx context.Context, id int64) ([]int64, error) {
			return repo.ListChildDocumentIDs(ctx, id, userID)
		},
	)
}
