package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booth/controllers"
	"booth/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	calls int
}

func (r *fakeReconciler) RunOnce(ctx context.Context, provider string) (*services.RunReport, error) {
	r.calls++
	return &services.RunReport{Provider: provider}, nil
}

type fakeRunLock struct {
	held     bool
	acquired []string
	released []string
}

func (l *fakeRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.held {
		return false, nil
	}
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *fakeRunLock) Release(ctx context.Context, key string) error {
	l.released = append(l.released, key)
	return nil
}

func performReconcile(t *testing.T, ctl *controllers.ReconcileController, provider string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reconcile/"+provider, nil)
	c.Params = gin.Params{{Key: "provider", Value: provider}}
	ctl.RunReconcile(c)
	return w
}

func TestRunReconcile_TakesRunLock(t *testing.T) {
	reconciler := &fakeReconciler{}
	lock := &fakeRunLock{}
	ctl := controllers.NewReconcileController(reconciler, lock)

	w := performReconcile(t, ctl, "stripe")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reconciler.calls)
	require.Equal(t, []string{"reconcile_lock:stripe"}, lock.acquired)
	assert.Equal(t, lock.acquired, lock.released)
}

func TestRunReconcile_SkipsWhenLockHeld(t *testing.T) {
	reconciler := &fakeReconciler{}
	lock := &fakeRunLock{held: true}
	ctl := controllers.NewReconcileController(reconciler, lock)

	w := performReconcile(t, ctl, "stripe")

	// Run của cron đang giữ lock, trigger thủ công không được chạy chồng lên
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, reconciler.calls)
	assert.Empty(t, lock.released)
}
