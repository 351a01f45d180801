package core

type ListTasksFilter struct {
	Date      *string `json:"date"`
	From      *string `json:"from"`
	To        *string `json:"to"`
	ProjectID *int64  `json:"project_id"`
	ParentID  *int64  `json:"parent_id"`
	Undated   bool    `json:"undated"`
	Completed *bool   `json:"completed"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type ListDocumentsFilter struct {
	ParentID  *int64 `json:"parent_id"`
	RootsOnly bool   `json:"roots_only"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
