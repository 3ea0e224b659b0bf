package controllers

import (
	"context"
	"time"

	"booth/response"
	"booth/services"

	"github.com/gin-gonic/gin"
)

const reconcileRunDeadline = 10 * time.Minute

// Reconciler định nghĩa interface cho việc chạy đối soát thủ công
type Reconciler interface {
	RunOnce(ctx context.Context, provider string) (*services.RunReport, error)
}

// ReconcileController cho operator chạy tay một lượt đối soát,
// đi qua đúng code path và run lock mà cron dùng
type ReconcileController struct {
	reconciler Reconciler
	lock       services.RunLock
}

func NewReconcileController(reconciler Reconciler, lock services.RunLock) *ReconcileController {
	return &ReconcileController{reconciler: reconciler, lock: lock}
}

// RunReconcile chạy một lượt đối soát cho provider được chỉ định
func (ctl *ReconcileController) RunReconcile(c *gin.Context) {
	provider := c.Param("provider")

	ctx, cancel := context.WithTimeout(c.Request.Context(), reconcileRunDeadline)
	defer cancel()

	if ctl.lock != nil {
		key := services.ReconcileLockKey(provider)
		ok, err := ctl.lock.Acquire(ctx, key, reconcileRunDeadline)
		if err != nil {
			response.ServerError(c)
			return
		}
		if !ok {
			response.Error(c, 0, "Một lượt đối soát của provider này đang chạy")
			return
		}
		// Nhả lock lỗi thì TTL sẽ tự giải phóng
		defer func() { _ = ctl.lock.Release(context.Background(), key) }()
	}

	report, err := ctl.reconciler.RunOnce(ctx, provider)
	if err != nil {
		response.Error(c, 0, err.Error())
		return
	}
	response.Success(c, report)
}
