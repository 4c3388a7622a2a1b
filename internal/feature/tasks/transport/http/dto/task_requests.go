// Package dto はtasksフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// CreateTaskReq は/taskへのPOSTリクエストボディを表します。
// dueDateはYYYY-MM-DD形式のカレンダー日付です（時刻成分なし）。
type CreateTaskReq struct {
	Title       string `json:"title" binding:"required,min=3,max=40"`
	Description string `json:"description" binding:"omitempty,max=300"`
	IsDone      bool   `json:"isDone"`
	DueDate     string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskReq は/task/:idへのPATCHリクエストボディを表します。
// nilのフィールドは現在の値を保持します。dueDateに空文字列を指定すると期日をクリアします。
type UpdateTaskReq struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=40"`
	Description *string `json:"description" binding:"omitempty,max=300"`
	IsDone      *bool   `json:"isDone"`
	DueDate     *string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

// ListTasksQuery は/taskのクエリパラメータを表します。
type ListTasksQuery struct {
	IsDone      *bool  `form:"isDone"`
	DueDateFrom string `form:"dueDateFrom" binding:"omitempty,datetime=2006-01-02"`
	DueDateTo   string `form:"dueDateTo" binding:"omitempty,datetime=2006-01-02"`
	Search      string `form:"search"`
}
