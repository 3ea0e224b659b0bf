package controllers

import (
	"fmt"
	"time"

	"booth/config"
	"booth/dto"
	"booth/response"
	"booth/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BoothController danh sách booth và thao tác bảo trì thủ công
type BoothController struct {
	db           *gorm.DB
	redisCli     *redis.Client
	boothService *services.BoothService
}

func NewBoothController(db *gorm.DB, redisCli *redis.Client) *BoothController {
	return &BoothController{
		db:           db,
		redisCli:     redisCli,
		boothService: services.NewBoothService(services.BoothServiceOptions{DB: db}),
	}
}

func boothCacheKey(tenantID uint) string {
	return fmt.Sprintf("booths:tenant:%d", tenantID)
}

// GetBooths lấy danh sách booth của tenant, có cache Redis
func (ctl *BoothController) GetBooths(c *gin.Context) {
	tenantID := c.GetUint("tenantID")
	if tenantID == 0 {
		response.Forbidden(c)
		return
	}

	cacheKey := boothCacheKey(tenantID)
	var cached []dto.BoothResponse

	// Lấy booth từ cache nếu có
	if err := services.GetFromRedis(config.Ctx, ctl.redisCli, cacheKey, &cached); err == nil && len(cached) > 0 {
		response.Success(c, cached)
		return
	}

	scope := services.TenantScope{TenantID: tenantID}
	booths, err := ctl.boothService.ListByTenant(scope)
	if err != nil {
		response.ServerError(c)
		return
	}

	resp := make([]dto.BoothResponse, 0, len(booths))
	for _, b := range booths {
		resp = append(resp, dto.BoothResponse{
			ID:                      b.ID,
			Code:                    b.Code,
			FloorArea:               b.FloorArea,
			MonthlyPrice:            b.MonthlyPrice,
			Status:                  b.Status,
			StatusBeforeMaintenance: b.StatusBeforeMaintenance,
		})
	}

	if err := services.SetToRedis(config.Ctx, ctl.redisCli, cacheKey, resp, 5*time.Minute); err != nil {
		// Cache lỗi không chặn response
		fmt.Println("Lỗi khi lưu cache booth:", err)
	}

	response.Success(c, resp)
}

// SetMaintenance bật/tắt bảo trì cho booth, chỉ operator được gọi
func (ctl *BoothController) SetMaintenance(c *gin.Context) {
	tenantID := c.GetUint("tenantID")
	if tenantID == 0 {
		response.Forbidden(c)
		return
	}

	var req dto.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 0, "Dữ liệu không hợp lệ")
		return
	}

	scope := services.TenantScope{TenantID: tenantID}
	var err error
	if req.Enable {
		_, err = ctl.boothService.SetMaintenance(scope, req.BoothID)
	} else {
		_, err = ctl.boothService.ClearMaintenance(scope, req.BoothID)
	}
	if err != nil {
		response.Error(c, 0, err.Error())
		return
	}

	// Trạng thái booth đổi thì cache không còn đúng
	if err := services.DeleteFromRedis(config.Ctx, ctl.redisCli, boothCacheKey(tenantID)); err != nil {
		fmt.Println("Lỗi khi xóa cache booth:", err)
	}

	response.Success(c, nil)
}
