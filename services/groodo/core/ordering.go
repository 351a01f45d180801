package core

import (
	"context"
	"time"
)

// OrderingIndex keeps order_index dense (1..n) inside a task partition.
// It must run on a transaction-bound repository whose partitions are
// already locked; it does no locking of its own.
type OrderingIndex struct {
	repo  TaskRepository
	clock Clock
}

func NewOrderingIndex(repo TaskRepository, clock Clock) *OrderingIndex {
	return &OrderingIndex{repo: repo, clock: clock}
}

// NextIndex returns the index for appending to p.
func (o *OrderingIndex) NextIndex(ctx context.Context, p Partition) (int, error) {
	return o.nextIndex(ctx, p, 0)
}

func (o *OrderingIndex) nextIndex(ctx context.Context, p Partition, exceptID int64) (int, error) {
	last, err := o.repo.MaxOrderIndex(ctx, p, exceptID)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// InsertAt opens a slot at position and returns it. Positions outside
// [1, NextIndex] are clamped.
func (o *OrderingIndex) InsertAt(ctx context.Context, p Partition, position int) (int, error) {
	return o.insertAt(ctx, p, position, 0)
}

func (o *OrderingIndex) insertAt(ctx context.Context, p Partition, position int, exceptID int64) (int, error) {
	next, err := o.nextIndex(ctx, p, exceptID)
	if err != nil {
		return 0, err
	}
	position = min(max(position, 1), next)
	if position == next {
		return position, nil
	}

	if err := o.repo.ShiftOrder(ctx, p, position, 1, exceptID); err != nil {
		return 0, err
	}
	recordShift("insert")
	return position, nil
}

// InsertFirst opens the first slot of p.
func (o *OrderingIndex) InsertFirst(ctx context.Context, p Partition) (int, error) {
	return o.InsertAt(ctx, p, 1)
}

// InsertAfter opens the slot right after afterID. The anchor must be a task
// of the same user in the same partition.
func (o *OrderingIndex) InsertAfter(ctx context.Context, p Partition, afterID int64) (int, error) {
	anchor, err := o.anchor(ctx, p, afterID)
	if err != nil {
		return 0, err
	}
	return o.InsertAt(ctx, p, anchor.OrderIndex+1)
}

// CompactAfterDelete closes the hole left at removedIndex.
func (o *OrderingIndex) CompactAfterDelete(ctx context.Context, p Partition, removedIndex int) error {
	return o.compact(ctx, p, removedIndex, 0)
}

func (o *OrderingIndex) compact(ctx context.Context, p Partition, removedIndex int, exceptID int64) error {
	if err := o.repo.ShiftOrder(ctx, p, removedIndex+1, -1, exceptID); err != nil {
		return err
	}
	recordShift("compact")
	return nil
}

// Move places t into partition to, first when afterID is nil, otherwise
// right after afterID. The row leaves its old slot before the target index
// is computed, so a move inside one partition sees the compacted order:
// moving C after B in [A B C] yields [A B C], moving A after B yields [B A C].
func (o *OrderingIndex) Move(ctx context.Context, t Task, to Partition, afterID *int64) (Task, error) {
	if afterID != nil {
		if *afterID == t.ID {
			return Task{}, ErrTaskInvalidArgs
		}
		// fail fast before touching any index
		if _, err := o.anchor(ctx, to, *afterID); err != nil {
			return Task{}, err
		}
	}

	return o.place(ctx, t, to, func() (int, error) {
		if afterID == nil {
			return 1, nil
		}
		// re-read: detaching may have shifted the anchor
		anchor, err := o.anchor(ctx, to, *afterID)
		if err != nil {
			return 0, err
		}
		return anchor.OrderIndex + 1, nil
	})
}

// MoveToEnd appends t to partition to.
func (o *OrderingIndex) MoveToEnd(ctx context.Context, t Task, to Partition) (Task, error) {
	return o.place(ctx, t, to, func() (int, error) {
		return o.nextIndex(ctx, to, t.ID)
	})
}

func (o *OrderingIndex) place(ctx context.Context, t Task, to Partition, target func() (int, error)) (Task, error) {
	if err := o.compact(ctx, t.Partition(), t.OrderIndex, t.ID); err != nil {
		return Task{}, err
	}

	position, err := target()
	if err != nil {
		return Task{}, err
	}
	position, err = o.insertAt(ctx, to, position, t.ID)
	if err != nil {
		return Task{}, err
	}

	t.Date = to.Date
	t.ProjectID = to.ProjectID
	t.OrderIndex = position
	t.UpdatedAt = o.now()
	return o.repo.UpdateTask(ctx, t)
}

func (o *OrderingIndex) anchor(ctx context.Context, p Partition, afterID int64) (Task, error) {
	anchor, err := o.repo.GetTask(ctx, afterID, p.UserID)
	if err != nil {
		return Task{}, err
	}
	if !anchor.Partition().Equal(p) {
		return Task{}, ErrTaskNotFound
	}
	return anchor, nil
}

func (o *OrderingIndex) now() time.Time {
	return o.clock.Now()
}
