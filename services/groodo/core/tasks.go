package core

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 5000
)

type NewTask struct {
	Title       string
	Description string
	Date        *string
	ProjectID   *int64
	ParentID    *int64
	// AfterID places the task right after another task of its partition,
	// First places it at the top. Neither means append.
	AfterID *int64
	First   bool
}

type MoveTask struct {
	Date      *string
	ProjectID *int64 // nil keeps the current project
	AfterID   *int64 // nil moves to the top of the target partition
}

type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

func validDate(date *string) bool {
	if date == nil {
		return true
	}
	_, err := time.Parse(DateLayout, *date)
	return err == nil
}

func dayKey(userID int64, date string) string {
	return "tasks-day:" + strconv.FormatInt(userID, 10) + ":" + date
}

func treeKey(entity string, userID int64) string {
	return entity + "-tree:" + strconv.FormatInt(userID, 10)
}

// lockKeys locks keys in sorted order so writers touching the same
// partitions always acquire them in the same sequence.
func lockKeys(ctx context.Context, repo Repository, keys ...string) error {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	return repo.Lock(ctx, slices.Compact(keys)...)
}

func (s *Service) CreateTask(ctx context.Context, userID int64, in NewTask) (Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if userID <= 0 || title == "" || len(title) > maxTitleLen || len(description) > maxDescriptionLen {
		return Task{}, ErrTaskInvalidArgs
	}
	if !validDate(in.Date) || (in.AfterID != nil && in.First) {
		return Task{}, ErrTaskInvalidArgs
	}

	var out Task
	err := s.db.InTx(ctx, func(repo Repository) error {
		projectID := in.ProjectID
		if in.ParentID != nil {
			if err := lockKeys(ctx, repo, treeKey("tasks", userID)); err != nil {
				return err
			}
			parent, err := repo.GetTask(ctx, *in.ParentID, userID)
			if err != nil {
				return err
			}
			if parent.ProjectID == nil {
				return ErrParentWithoutProject
			}
			ok, err := taskHierarchy(repo, userID).CanAttachChild(ctx, parent.ID)
			if err != nil {
				return err
			}
			if !ok {
				recordRejection("task", "depth")
				return ErrDepthExceeded
			}
			// children always live in the parent's project
			projectID = ptr(*parent.ProjectID)
		} else if projectID != nil {
			if _, err := repo.GetProject(ctx, *projectID, userID); err != nil {
				return err
			}
		}
		if projectID == nil && in.Date == nil {
			return ErrDateRequired
		}

		p := Partition{UserID: userID, Date: in.Date, ProjectID: projectID}
		keys := []string{p.Key()}
		if in.Date != nil {
			keys = append(keys, dayKey(userID, *in.Date))
		}
		if err := lockKeys(ctx, repo, keys...); err != nil {
			return err
		}

		if in.Date != nil {
			if err := checkDailyLimit(ctx, repo, userID, *in.Date); err != nil {
				return err
			}
		}

		idx := NewOrderingIndex(repo, s.clock)
		var (
			position int
			err      error
		)
		switch {
		case in.AfterID != nil:
			position, err = idx.InsertAfter(ctx, p, *in.AfterID)
		case in.First:
			position, err = idx.InsertFirst(ctx, p)
		default:
			position, err = idx.NextIndex(ctx, p)
		}
		if err != nil {
			return err
		}

		now := s.now()
		out, err = repo.InsertTask(ctx, Task{
			UserID:      userID,
			Date:        in.Date,
			ProjectID:   projectID,
			ParentID:    in.ParentID,
			OrderIndex:  position,
			Title:       title,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		return Task{}, err
	}
	return out, nil
}

func checkDailyLimit(ctx context.Context, repo TaskRepository, userID int64, date string) error {
	n, err := repo.CountTasksOnDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if n >= DailyTaskLimit {
		return ErrDailyLimit
	}
	return nil
}

func (s *Service) GetTask(ctx context.Context, id, userID int64) (Task, error) {
	if id <= 0 || userID <= 0 {
		return Task{}, ErrTaskInvalidArgs
	}
	return s.db.GetTask(ctx, id, userID)
}

func (s *Service) ListTasks(ctx context.Context, userID int64, f ListTasksFilter) ([]Task, error) {
	if userID <= 0 || f.Limit < 0 || f.Offset < 0 {
		return nil, ErrTaskInvalidArgs
	}
	if !validDate(f.Date) || !validDate(f.From) || !validDate(f.To) {
		return nil, ErrTaskInvalidArgs
	}
	if f.Undated && (f.Date != nil || f.From != nil || f.To != nil) {
		return nil, ErrTaskInvalidArgs
	}
	return s.db.ListTasks(ctx, userID, f)
}

func (s *Service) PatchTask(ctx context.Context, id, userID int64, p TaskPatch) (Task, error) {
	if id <= 0 || userID <= 0 {
		return Task{}, ErrTaskInvalidArgs
	}
	if p.Title == nil && p.Description == nil && p.Completed == nil {
		return Task{}, ErrTaskInvalidArgs
	}

	var out Task
	err := s.db.InTx(ctx, func(repo Repository) error {
		cur, err := repo.GetTask(ctx, id, userID)
		if err != nil {
			return err
		}

		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" || len(title) > maxTitleLen {
				return ErrTaskInvalidArgs
			}
			cur.Title = title
		}
		if p.Description != nil {
			description := strings.TrimSpace(*p.Description)
			if len(description) > maxDescriptionLen {
				return ErrTaskInvalidArgs
			}
			cur.Description = description
		}
		if p.Completed != nil {
			cur.Completed = *p.Completed
		}
		cur.UpdatedAt = s.now()

		out, err = repo.UpdateTask(ctx, cur)
		return err
	})
	if err != nil {
		return Task{}, err
	}
	return out, nil
}

// DeleteTask removes a task together with its subtree. The storage layer
// cascades the subtree; every vacated slot is compacted afterwards.
func (s *Service) DeleteTask(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return ErrTaskInvalidArgs
	}

	return s.db.InTx(ctx, func(repo Repository) error {
		removed, err := s.lockSubtree(ctx, repo, id, userID)
		if err != nil {
			return err
		}

		if err := repo.DeleteTask(ctx, id, userID); err != nil {
			return err
		}

		byPartition := make(map[string][]Task)
		for _, t := range removed {
			byPartition[t.Partition().Key()] = append(byPartition[t.Partition().Key()], t)
		}

		idx := NewOrderingIndex(repo, s.clock)
		for _, group := range byPartition {
			// highest first so earlier compactions don't move later slots
			slices.SortFunc(group, func(a, b Task) int { return b.OrderIndex - a.OrderIndex })
			for _, t := range group {
				if err := idx.CompactAfterDelete(ctx, t.Partition(), t.OrderIndex); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// UpdateOrder moves a task to another slot, date or project.
func (s *Service) UpdateOrder(ctx context.Context, id, userID int64, in MoveTask) (Task, error) {
	if id <= 0 || userID <= 0 || !validDate(in.Date) {
		return Task{}, ErrTaskInvalidArgs
	}

	var out Task
	err := s.db.InTx(ctx, func(repo Repository) error {
		t, err := repo.GetTask(ctx, id, userID)
		if err != nil {
			return err
		}

		projectID := t.ProjectID
		projectChanged := in.ProjectID != nil && !eqPtr(in.ProjectID, t.ProjectID)
		if projectChanged {
			if t.ParentID != nil {
				recordRejection("task", "project_mismatch")
				return ErrProjectMismatch
			}
			if _, err := repo.GetProject(ctx, *in.ProjectID, userID); err != nil {
				return err
			}
			projectID = in.ProjectID
		}
		if projectID == nil && in.Date == nil {
			return ErrDateRequired
		}
		to := Partition{UserID: userID, Date: in.Date, ProjectID: projectID}

		var descendants []Task
		if projectChanged {
			descendants, err = s.descendants(ctx, repo, t.ID, userID)
			if err != nil {
				return err
			}
		}

		keys := []string{t.Partition().Key(), to.Key()}
		if in.Date != nil {
			keys = append(keys, dayKey(userID, *in.Date))
		}
		keys = append(keys, relocationKeys(descendants, projectID)...)
		if err := lockKeys(ctx, repo, keys...); err != nil {
			return err
		}

		// re-read under lock, the index may have shifted
		if t, err = repo.GetTask(ctx, id, userID); err != nil {
			return err
		}
		if in.Date != nil && !eqPtr(t.Date, in.Date) {
			if err := checkDailyLimit(ctx, repo, userID, *in.Date); err != nil {
				return err
			}
		}

		idx := NewOrderingIndex(repo, s.clock)
		if out, err = idx.Move(ctx, t, to, in.AfterID); err != nil {
			return err
		}
		return s.relocate(ctx, repo, idx, descendants, projectID)
	})
	if err != nil {
		return Task{}, err
	}
	return out, nil
}

// ReassignParent attaches a task under newParentID, or detaches it when
// newParentID is nil. The task and its descendants follow the new parent's
// project and are appended to their new partitions.
func (s *Service) ReassignParent(ctx context.Context, id, userID int64, newParentID *int64) (Task, error) {
	if id <= 0 || userID <= 0 {
		return Task{}, ErrTaskInvalidArgs
	}
	if newParentID != nil && IsSelfParent(id, *newParentID) {
		recordRejection("task", "self_parent")
		return Task{}, ErrSelfParent
	}

	var out Task
	err := s.db.InTx(ctx, func(repo Repository) error {
		if err := lockKeys(ctx, repo, treeKey("tasks", userID)); err != nil {
			return err
		}
		t, err := repo.GetTask(ctx, id, userID)
		if err != nil {
			return err
		}

		if newParentID == nil {
			if t.ParentID == nil {
				out = t
				return nil
			}
			t.ParentID = nil
			t.UpdatedAt = s.now()
			out, err = repo.UpdateTask(ctx, t)
			return err
		}

		parent, err := repo.GetTask(ctx, *newParentID, userID)
		if err != nil {
			return err
		}
		if parent.ProjectID == nil {
			return ErrParentWithoutProject
		}

		h := taskHierarchy(repo, userID)
		cycle, err := h.WouldCreateCycle(ctx, t.ID, parent.ID)
		if err != nil {
			return err
		}
		if cycle {
			recordRejection("task", "cycle")
			return ErrCycleDetected
		}
		height, err := h.HeightOf(ctx, t.ID)
		if err != nil {
			return err
		}
		ok, err := h.CanAttachSubtree(ctx, parent.ID, height)
		if err != nil {
			return err
		}
		if !ok {
			recordRejection("task", "depth")
			return ErrDepthExceeded
		}

		projectID := ptr(*parent.ProjectID)
		t.ParentID = ptr(parent.ID)
		if eqPtr(t.ProjectID, projectID) {
			t.UpdatedAt = s.now()
			out, err = repo.UpdateTask(ctx, t)
			return err
		}

		descendants, err := s.descendants(ctx, repo, t.ID, userID)
		if err != nil {
			return err
		}
		keys := relocationKeys(append([]Task{t}, descendants...), projectID)
		if err := lockKeys(ctx, repo, keys...); err != nil {
			return err
		}

		fresh, err := repo.GetTask(ctx, t.ID, userID)
		if err != nil {
			return err
		}
		fresh.ParentID = t.ParentID
		to := Partition{UserID: userID, Date: fresh.Date, ProjectID: projectID}

		idx := NewOrderingIndex(repo, s.clock)
		if out, err = idx.MoveToEnd(ctx, fresh, to); err != nil {
			return err
		}
		return s.relocate(ctx, repo, idx, descendants, projectID)
	})
	if err != nil {
		return Task{}, err
	}
	return out, nil
}

// descendants returns the subtree below id, level by level.
func (s *Service) descendants(ctx context.Context, repo TaskRepository, id, userID int64) ([]Task, error) {
	var out []Task
	level := []int64{id}
	for depth := 0; depth < MaxTaskDepth && len(level) > 0; depth++ {
		var next []int64
		for _, parentID := range level {
			children, err := repo.ListChildTasks(ctx, parentID, userID)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				out = append(out, c)
				next = append(next, c.ID)
			}
		}
		level = next
	}
	return out, nil
}

// lockSubtree locks every partition a task and its subtree occupy and
// returns the rows as read under those locks.
func (s *Service) lockSubtree(ctx context.Context, repo Repository, id, userID int64) ([]Task, error) {
	locked := make(map[string]bool)
	for {
		root, err := repo.GetTask(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		below, err := s.descendants(ctx, repo, id, userID)
		if err != nil {
			return nil, err
		}
		rows := append([]Task{root}, below...)

		var missing []string
		for _, t := range rows {
			if key := t.Partition().Key(); !locked[key] {
				missing = append(missing, key)
				locked[key] = true
			}
		}
		if len(missing) == 0 {
			return rows, nil
		}
		if err := lockKeys(ctx, repo, missing...); err != nil {
			return nil, err
		}
	}
}

func relocationKeys(tasks []Task, projectID *int64) []string {
	keys := make([]string, 0, 2*len(tasks))
	for _, t := range tasks {
		to := Partition{UserID: t.UserID, Date: t.Date, ProjectID: projectID}
		keys = append(keys, t.Partition().Key(), to.Key())
	}
	return keys
}

// relocate moves every task to the end of its partition under projectID.
// Rows are re-read one by one since each move compacts the previous slot.
func (s *Service) relocate(ctx context.Context, repo TaskRepository, idx *OrderingIndex, tasks []Task, projectID *int64) error {
	for _, t := range tasks {
		cur, err := repo.GetTask(ctx, t.ID, t.UserID)
		if err != nil {
			return err
		}
		to := Partition{UserID: cur.UserID, Date: cur.Date, ProjectID: projectID}
		if _, err := idx.MoveToEnd(ctx, cur, to); err != nil {
			return err
		}
	}
	return nil
}
