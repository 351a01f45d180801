package core_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

func mustCreateProject(t *testing.T, svc *core.Service, name string) core.Project {
	t.Helper()

	p, err := svc.CreateProject(context.Background(), userID, name, "", "")
	require.NoError(t, err, "failed to prepare project")
	return p
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()

	cases := []struct {
		name string
		in   core.NewTask
		want error
	}{
		{name: "empty title", in: core.NewTask{Title: "   ", Date: strPtr("2025-09-28")}, want: core.ErrTaskInvalidArgs},
		{name: "bad date", in: core.NewTask{Title: "A", Date: strPtr("28.09.2025")}, want: core.ErrTaskInvalidArgs},
		{name: "after and first", in: core.NewTask{Title: "A", Date: strPtr("2025-09-28"), AfterID: int64Ptr(1), First: true}, want: core.ErrTaskInvalidArgs},
		{name: "undated without project", in: core.NewTask{Title: "A"}, want: core.ErrDateRequired},
		{name: "missing project", in: core.NewTask{Title: "A", ProjectID: int64Ptr(999)}, want: core.ErrProjectNotFound},
		{name: "missing parent", in: core.NewTask{Title: "A", ParentID: int64Ptr(999)}, want: core.ErrTaskNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), userID, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateTask_UndatedProjectTask(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")

	a := mustCreateTask(t, svc, core.NewTask{Title: "A", ProjectID: int64Ptr(p.ID)})
	b := mustCreateTask(t, svc, core.NewTask{Title: "B", ProjectID: int64Ptr(p.ID)})
	require.Nil(t, a.Date)
	require.Equal(t, 1, a.OrderIndex)
	require.Equal(t, 2, b.OrderIndex)

	order, _ := db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(p.ID)})
	require.Equal(t, []int64{a.ID, b.ID}, order)
}

func TestCreateTask_ProjectPartitionsAreSeparate(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")

	plain := mustCreateTask(t, svc, core.NewTask{Title: "A", Date: strPtr("2025-09-28")})
	inProject := mustCreateTask(t, svc, core.NewTask{Title: "B", Date: strPtr("2025-09-28"), ProjectID: int64Ptr(p.ID)})
	require.Equal(t, 1, plain.OrderIndex)
	require.Equal(t, 1, inProject.OrderIndex)
}

func TestCreateTask_DailyLimit(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	for i := 0; i < core.DailyTaskLimit; i++ {
		mustCreateTask(t, svc, core.NewTask{Title: fmt.Sprintf("task %d", i), Date: strPtr("2025-09-28")})
	}

	_, err := svc.CreateTask(context.Background(), userID, core.NewTask{Title: "one too many", Date: strPtr("2025-09-28")})
	require.ErrorIs(t, err, core.ErrDailyLimit)
	require.ErrorIs(t, err, core.ErrInvalidArgs)

	order, _ := db.partitionOrder(day("2025-09-28"))
	require.Len(t, order, core.DailyTaskLimit)

	// other days are unaffected
	mustCreateTask(t, svc, core.NewTask{Title: "tomorrow", Date: strPtr("2025-09-29")})
}

func TestCreateTask_InheritsParentProject(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	work := mustCreateProject(t, svc, "work")
	home := mustCreateProject(t, svc, "home")

	parent := mustCreateTask(t, svc, core.NewTask{Title: "parent", ProjectID: int64Ptr(work.ID)})
	child := mustCreateTask(t, svc, core.NewTask{Title: "child", ParentID: int64Ptr(parent.ID), ProjectID: int64Ptr(home.ID)})

	require.NotNil(t, child.ProjectID)
	require.Equal(t, work.ID, *child.ProjectID)
	require.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateTask_ParentWithoutProject(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	parent := mustCreateTask(t, svc, core.NewTask{Title: "dated", Date: strPtr("2025-09-28")})

	_, err := svc.CreateTask(context.Background(), userID, core.NewTask{Title: "child", ParentID: int64Ptr(parent.ID)})
	require.ErrorIs(t, err, core.ErrParentWithoutProject)
}

func TestCreateTask_DepthBound(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")

	root := mustCreateTask(t, svc, core.NewTask{Title: "root", ProjectID: int64Ptr(p.ID)})
	a := mustCreateTask(t, svc, core.NewTask{Title: "A", ParentID: int64Ptr(root.ID)})
	b := mustCreateTask(t, svc, core.NewTask{Title: "B", ParentID: int64Ptr(a.ID)})

	before, _ := db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(p.ID)})

	_, err := svc.CreateTask(context.Background(), userID, core.NewTask{Title: "too deep", ParentID: int64Ptr(b.ID)})
	require.ErrorIs(t, err, core.ErrDepthExceeded)
	require.ErrorIs(t, err, core.ErrInvalidArgs)

	after, _ := db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(p.ID)})
	require.Equal(t, before, after)
}

func TestCreateTask_InsertFailureRollsBack(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	tasks := createDay(t, svc, "2025-09-28", "A", "B")

	db.fail["InsertTask"] = true
	_, err := svc.CreateTask(context.Background(), userID, core.NewTask{Title: "Z", Date: strPtr("2025-09-28"), First: true})
	require.ErrorIs(t, err, errInjected)

	order, indices := db.partitionOrder(day("2025-09-28"))
	require.Equal(t, ids(tasks...), order)
	require.Equal(t, []int{1, 2}, indices)
}

func TestDeleteTask_CascadesSubtreeAndCompacts(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")
	inProject := core.Partition{UserID: userID, ProjectID: int64Ptr(p.ID)}

	first := mustCreateTask(t, svc, core.NewTask{Title: "first", ProjectID: int64Ptr(p.ID)})
	parent := mustCreateTask(t, svc, core.NewTask{Title: "parent", ProjectID: int64Ptr(p.ID)})
	child := mustCreateTask(t, svc, core.NewTask{Title: "child", ParentID: int64Ptr(parent.ID)})
	mustCreateTask(t, svc, core.NewTask{Title: "grandchild", ParentID: int64Ptr(child.ID)})
	last := mustCreateTask(t, svc, core.NewTask{Title: "last", ProjectID: int64Ptr(p.ID)})
	// a dated child lives in another partition of the same project
	datedChild := mustCreateTask(t, svc, core.NewTask{Title: "dated child", ParentID: int64Ptr(parent.ID), Date: strPtr("2025-09-28")})
	datedOther := mustCreateTask(t, svc, core.NewTask{Title: "dated other", ProjectID: int64Ptr(p.ID), Date: strPtr("2025-09-28")})
	require.Equal(t, 1, datedChild.OrderIndex)

	require.NoError(t, svc.DeleteTask(context.Background(), parent.ID, userID))

	order, indices := db.partitionOrder(inProject)
	require.Equal(t, []int64{first.ID, last.ID}, order)
	require.Equal(t, []int{1, 2}, indices)

	order, indices = db.partitionOrder(core.Partition{UserID: userID, Date: strPtr("2025-09-28"), ProjectID: int64Ptr(p.ID)})
	require.Equal(t, []int64{datedOther.ID}, order)
	require.Equal(t, []int{1}, indices)
	require.True(t, db.allPartitionsDense())
}

func TestDeleteTask_NotOwned(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	tasks := createDay(t, svc, "2025-09-28", "A")

	err := svc.DeleteTask(context.Background(), tasks[0].ID, 2)
	require.ErrorIs(t, err, core.ErrTaskNotFound)
}

func TestUpdateOrder_ProjectChangeCascadesToChildren(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	work := mustCreateProject(t, svc, "work")
	home := mustCreateProject(t, svc, "home")

	parent := mustCreateTask(t, svc, core.NewTask{Title: "parent", ProjectID: int64Ptr(work.ID), Date: strPtr("2025-09-28")})
	child := mustCreateTask(t, svc, core.NewTask{Title: "child", ParentID: int64Ptr(parent.ID)})
	homeTask := mustCreateTask(t, svc, core.NewTask{Title: "home", ProjectID: int64Ptr(home.ID)})

	moved, err := svc.UpdateOrder(context.Background(), parent.ID, userID, core.MoveTask{
		Date: strPtr("2025-09-28"), ProjectID: int64Ptr(home.ID),
	})
	require.NoError(t, err)
	require.Equal(t, home.ID, *moved.ProjectID)

	gotChild, err := svc.GetTask(context.Background(), child.ID, userID)
	require.NoError(t, err)
	require.Equal(t, home.ID, *gotChild.ProjectID)

	order, _ := db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(home.ID)})
	require.Equal(t, []int64{homeTask.ID, child.ID}, order)
	require.True(t, db.allPartitionsDense())
}

func TestUpdateOrder_ChildCannotLeaveParentProject(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	work := mustCreateProject(t, svc, "work")
	home := mustCreateProject(t, svc, "home")
	parent := mustCreateTask(t, svc, core.NewTask{Title: "parent", ProjectID: int64Ptr(work.ID)})
	child := mustCreateTask(t, svc, core.NewTask{Title: "child", ParentID: int64Ptr(parent.ID)})

	_, err := svc.UpdateOrder(context.Background(), child.ID, userID, core.MoveTask{ProjectID: int64Ptr(home.ID)})
	require.ErrorIs(t, err, core.ErrProjectMismatch)
}

func TestUpdateOrder_UndatedNeedsProject(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	tasks := createDay(t, svc, "2025-09-28", "A")

	_, err := svc.UpdateOrder(context.Background(), tasks[0].ID, userID, core.MoveTask{})
	require.ErrorIs(t, err, core.ErrDateRequired)
}

func TestUpdateOrder_DailyLimitOnNewDate(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	for i := 0; i < core.DailyTaskLimit; i++ {
		mustCreateTask(t, svc, core.NewTask{Title: fmt.Sprintf("task %d", i), Date: strPtr("2025-09-29")})
	}
	tasks := createDay(t, svc, "2025-09-28", "A")

	_, err := svc.UpdateOrder(context.Background(), tasks[0].ID, userID, core.MoveTask{Date: strPtr("2025-09-29")})
	require.ErrorIs(t, err, core.ErrDailyLimit)
}

func TestReassignParent(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	work := mustCreateProject(t, svc, "work")
	home := mustCreateProject(t, svc, "home")

	homeRoot := mustCreateTask(t, svc, core.NewTask{Title: "home root", ProjectID: int64Ptr(home.ID)})
	task := mustCreateTask(t, svc, core.NewTask{Title: "task", ProjectID: int64Ptr(work.ID)})
	sub := mustCreateTask(t, svc, core.NewTask{Title: "sub", ParentID: int64Ptr(task.ID)})
	workOther := mustCreateTask(t, svc, core.NewTask{Title: "other", ProjectID: int64Ptr(work.ID)})

	got, err := svc.ReassignParent(context.Background(), task.ID, userID, int64Ptr(homeRoot.ID))
	require.NoError(t, err)
	require.Equal(t, homeRoot.ID, *got.ParentID)
	require.Equal(t, home.ID, *got.ProjectID)

	gotSub, err := svc.GetTask(context.Background(), sub.ID, userID)
	require.NoError(t, err)
	require.Equal(t, home.ID, *gotSub.ProjectID)

	order, _ := db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(work.ID)})
	require.Equal(t, []int64{workOther.ID}, order)
	order, _ = db.partitionOrder(core.Partition{UserID: userID, ProjectID: int64Ptr(home.ID)})
	require.Equal(t, []int64{homeRoot.ID, task.ID, sub.ID}, order)
	require.True(t, db.allPartitionsDense())
}

func TestReassignParent_Rejections(t *testing.T) {
	t.Parallel()

	db, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")

	root := mustCreateTask(t, svc, core.NewTask{Title: "root", ProjectID: int64Ptr(p.ID)})
	a := mustCreateTask(t, svc, core.NewTask{Title: "A", ParentID: int64Ptr(root.ID)})
	b := mustCreateTask(t, svc, core.NewTask{Title: "B", ParentID: int64Ptr(a.ID)})
	other := mustCreateTask(t, svc, core.NewTask{Title: "other", ProjectID: int64Ptr(p.ID)})
	dated := mustCreateTask(t, svc, core.NewTask{Title: "dated", Date: strPtr("2025-09-28")})

	cases := []struct {
		name   string
		id     int64
		parent int64
		want   error
	}{
		{name: "self", id: a.ID, parent: a.ID, want: core.ErrSelfParent},
		{name: "descendant", id: root.ID, parent: b.ID, want: core.ErrCycleDetected},
		{name: "too deep", id: other.ID, parent: b.ID, want: core.ErrDepthExceeded},
		{name: "subtree too deep", id: root.ID, parent: other.ID, want: core.ErrDepthExceeded},
		{name: "parent without project", id: other.ID, parent: dated.ID, want: core.ErrParentWithoutProject},
		{name: "missing parent", id: other.ID, parent: 999, want: core.ErrTaskNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := db.GetTask(context.Background(), tc.id, userID)
			require.NoError(t, err)

			_, err = svc.ReassignParent(context.Background(), tc.id, userID, int64Ptr(tc.parent))
			require.ErrorIs(t, err, tc.want)

			after, err := db.GetTask(context.Background(), tc.id, userID)
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestReassignParent_Detach(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	p := mustCreateProject(t, svc, "work")
	root := mustCreateTask(t, svc, core.NewTask{Title: "root", ProjectID: int64Ptr(p.ID)})
	child := mustCreateTask(t, svc, core.NewTask{Title: "child", ParentID: int64Ptr(root.ID)})

	got, err := svc.ReassignParent(context.Background(), child.ID, userID, nil)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
	require.Equal(t, p.ID, *got.ProjectID)
}

func TestPatchTask(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	tasks := createDay(t, svc, "2025-09-28", "A")

	_, err := svc.PatchTask(context.Background(), tasks[0].ID, userID, core.TaskPatch{})
	require.ErrorIs(t, err, core.ErrTaskInvalidArgs)

	done := true
	got, err := svc.PatchTask(context.Background(), tasks[0].ID, userID, core.TaskPatch{Completed: &done, Title: strPtr(" renamed ")})
	require.NoError(t, err)
	require.True(t, got.Completed)
	require.Equal(t, "renamed", got.Title)
	require.Equal(t, tasks[0].OrderIndex, got.OrderIndex)
}

func TestListTasks_FilterValidation(t *testing.T) {
	t.Parallel()

	_, svc := newServiceWithFakeDB()
	createDay(t, svc, "2025-09-28", "A", "B")
	createDay(t, svc, "2025-09-29", "C")

	got, err := svc.ListTasks(context.Background(), userID, core.ListTasksFilter{Date: strPtr("2025-09-28")})
	require.NoError(t, err)
	require.Len(t, got, 2)

	_, err = svc.ListTasks(context.Background(), userID, core.ListTasksFilter{Undated: true, Date: strPtr("2025-09-28")})
	require.ErrorIs(t, err, core.ErrTaskInvalidArgs)

	_, err = svc.ListTasks(context.Background(), userID, core.ListTasksFilter{From: strPtr("tomorrow")})
	require.ErrorIs(t, err, core.ErrTaskInvalidArgs)
}
