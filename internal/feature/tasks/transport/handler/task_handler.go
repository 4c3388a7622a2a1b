// Package handler はtasksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/transport/http/dto"
	"task_backend/internal/feature/tasks/usecase"
	jwtmw "task_backend/internal/platform/jwt"
)

// defaultUpcomingDays は/task/upcomingのdaysパラメータのデフォルト値です。
const defaultUpcomingDays = 7

// TaskUsecase はタスク操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type TaskUsecase interface {
	Create(ctx context.Context, ownerID uint, in usecase.CreateTaskInput) (*entity.Task, error)
	FindAllByUser(ctx context.Context, ownerID uint, filter usecase.TaskFilter) ([]entity.Task, error)
	FindOne(ctx context.Context, id, ownerID uint) (*entity.Task, error)
	Update(ctx context.Context, id, ownerID uint, in usecase.UpdateTaskInput) (*entity.Task, error)
	ToggleComplete(ctx context.Context, id, ownerID uint) (*entity.Task, error)
	Remove(ctx context.Context, id, ownerID uint) (*entity.Task, error)
	GetStatistics(ctx context.Context, ownerID uint) (usecase.Statistics, error)
	GetUpcomingTasks(ctx context.Context, ownerID uint, days int) ([]entity.Task, error)
	GetOverdueTasks(ctx context.Context, ownerID uint) ([]entity.Task, error)
}

// TaskHandler はタスク操作のHTTPリクエストを処理します。
// すべてのエンドポイントは認証ミドルウェアの背後にあり、呼び出し元のタスクにスコープされます。
type TaskHandler struct {
	tasks TaskUsecase
}

// NewTaskHandler はTaskHandlerの新しいインスタンスを生成します。
func NewTaskHandler(tasks TaskUsecase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create はタスク作成APIエンドポイントを処理します。
// 成功時はオーナー情報付きのタスクと201を返却します。
func (h *TaskHandler) Create(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}

	var req dto.CreateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), owner.ID, usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsDone:      req.IsDone,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskResp(task, owner))
}

// List はフィルタ付きのタスク一覧APIエンドポイントを処理します。
// クエリパラメータ: isDone, dueDateFrom, dueDateTo, search
func (h *TaskHandler) List(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}

	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.Warn("list tasks validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid query"})
		return
	}

	filter := usecase.TaskFilter{
		IsDone: q.IsDone,
		Search: q.Search,
	}
	// バリデーション済みのため解析エラーは発生しない
	if from, err := usecase.ParseDueDate(q.DueDateFrom); err == nil {
		filter.DueDateFrom = from
	}
	if to, err := usecase.ParseDueDate(q.DueDateTo); err == nil {
		filter.DueDateTo = to
	}

	tasks, err := h.tasks.FindAllByUser(c.Request.Context(), owner.ID, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskListResp(tasks, owner))
}

// GetOne は単一タスク取得APIエンドポイントを処理します。
func (h *TaskHandler) GetOne(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.FindOne(c.Request.Context(), id, owner.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResp(task, owner))
}

// Update はタスク部分更新APIエンドポイントを処理します。
func (h *TaskHandler) Update(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid request"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, owner.ID, usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsDone:      req.IsDone,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResp(task, owner))
}

// Toggle はタスクの完了フラグを反転するAPIエンドポイントを処理します。
func (h *TaskHandler) Toggle(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleComplete(c.Request.Context(), id, owner.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResp(task, owner))
}

// Delete はタスク削除APIエンドポイントを処理します。削除前のレコードを返却します。
func (h *TaskHandler) Delete(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Remove(c.Request.Context(), id, owner.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResp(task, owner))
}

// Statistics はタスク統計APIエンドポイントを処理します。
func (h *TaskHandler) Statistics(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}

	stats, err := h.tasks.GetStatistics(c.Request.Context(), owner.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Upcoming は期日が近い未完了タスクの一覧APIエンドポイントを処理します。
// daysクエリパラメータのデフォルトは7です。
func (h *TaskHandler) Upcoming(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}

	days := defaultUpcomingDays
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "days must be an integer"})
			return
		}
		days = n
	}

	tasks, err := h.tasks.GetUpcomingTasks(c.Request.Context(), owner.ID, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskListResp(tasks, owner))
}

// Overdue は期日を過ぎた未完了タスクの一覧APIエンドポイントを処理します。
func (h *TaskHandler) Overdue(c *gin.Context) {
	owner, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}

	tasks, err := h.tasks.GetOverdueTasks(c.Request.Context(), owner.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskListResp(tasks, owner))
}

// parseID は:idパスパラメータを解析します。不正な場合は400を返して処理を打ち切ります。
func (h *TaskHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

// respondError はユースケースのエラー種別をHTTPステータスに対応付けます。
// 内部のストレージエラーは詳細を漏らさず500として返却します。
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResp{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotTaskOwner):
		c.JSON(http.StatusForbidden, dto.ErrorResp{Error: err.Error()})
	case errors.Is(err, usecase.ErrDuplicateTask):
		c.JSON(http.StatusConflict, dto.ErrorResp{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidDueDate):
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: err.Error()})
	default:
		slog.Error("task operation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResp{Error: "internal error"})
	}
}
