package jobs

import (
	"context"
	"log"
	"time"

	"booth/constants"
	"booth/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const (
	// Deadline cho một lượt đối soát, hết hạn thì run dừng ở ranh giới
	// giữa hai transaction
	reconcileDeadline = 10 * time.Minute
	syncDeadline      = 30 * time.Minute

	// Lỗi run-level được thử lại tối đa chừng này lần rồi bỏ, đợi chu kỳ sau
	maxRunRetries = 3
)

// Reconciler định nghĩa interface cho việc đối soát giao dịch
type Reconciler interface {
	RunOnce(ctx context.Context, provider string) (*services.RunReport, error)
}

// ConsistencySyncer định nghĩa interface cho các job đồng bộ hằng ngày
type ConsistencySyncer interface {
	ExpireRentals(ctx context.Context) (int, error)
	SyncBoothStatuses(ctx context.Context) (int, error)
}

var (
	reconciler  Reconciler
	syncer      ConsistencySyncer
	redisClient *redis.Client
)

// SetReconciler thiết lập implementation cho Reconciler
func SetReconciler(r Reconciler) {
	reconciler = r
}

// SetSyncer thiết lập implementation cho ConsistencySyncer
func SetSyncer(s ConsistencySyncer) {
	syncer = s
}

// SetRedisClient thiết lập redis client cho run lock
func SetRedisClient(rdb *redis.Client) {
	redisClient = rdb
}

// InitCronJobs khởi tạo các cron jobs: đối soát mỗi 15 phút cho từng provider,
// đồng bộ toàn hệ thống lúc 0h mỗi ngày
func InitCronJobs(c *cron.Cron) error {
	for _, provider := range constants.Providers {
		provider := provider
		_, err := c.AddFunc("*/15 * * * *", func() {
			RunReconcile(provider)
		})
		if err != nil {
			return err
		}
	}

	_, err := c.AddFunc("0 0 * * *", RunDailySync)
	if err != nil {
		return err
	}

	c.Start()
	log.Println("Cron jobs initialized successfully")
	return nil
}

// RunReconcile chạy một lượt đối soát cho một provider, có lock để hai run
// của cùng provider không chồng lên nhau
func RunReconcile(provider string) {
	if reconciler == nil {
		log.Printf("Lỗi: Reconciler chưa được thiết lập")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reconcileDeadline)
	defer cancel()

	if redisClient != nil {
		key := services.ReconcileLockKey(provider)
		ok, err := services.AcquireRunLock(ctx, redisClient, key, reconcileDeadline)
		if err != nil {
			log.Printf("Lỗi khi lấy run lock cho %s: %v", provider, err)
		} else if !ok {
			log.Printf("Run đối soát %s trước đó vẫn đang chạy, bỏ qua lượt này", provider)
			return
		} else {
			defer func() {
				if err := services.ReleaseRunLock(context.Background(), redisClient, key); err != nil {
					log.Printf("Lỗi khi nhả run lock cho %s: %v", provider, err)
				}
			}()
		}
	}

	for attempt := 1; attempt <= maxRunRetries; attempt++ {
		report, err := reconciler.RunOnce(ctx, provider)
		if err == nil {
			log.Printf("Đối soát %s xong: checked=%d completed=%d failed=%d compensated=%d",
				provider, report.Checked, report.Completed, report.Failed, report.Compensated)
			return
		}
		log.Printf("Lỗi khi đối soát %s (lần %d/%d): %v", provider, attempt, maxRunRetries, err)
	}
	log.Printf("Bỏ lượt đối soát %s sau %d lần lỗi, đợi chu kỳ sau", provider, maxRunRetries)
}

// RunDailySync chạy hai job đồng bộ: hết hạn rental trước, tính lại booth sau
func RunDailySync() {
	if syncer == nil {
		log.Printf("Lỗi: ConsistencySyncer chưa được thiết lập")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncDeadline)
	defer cancel()

	log.Printf("Đang chạy đồng bộ rental/booth lúc: %v", time.Now())

	if _, err := syncer.ExpireRentals(ctx); err != nil {
		log.Printf("Lỗi khi chạy rental expiry sync: %v", err)
	}
	if _, err := syncer.SyncBoothStatuses(ctx); err != nil {
		log.Printf("Lỗi khi chạy booth status sync: %v", err)
	}
}
