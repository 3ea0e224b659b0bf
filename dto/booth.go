package dto

// BoothResponse thông tin booth trả về cho client
type BoothResponse struct {
	ID                      uint    `json:"id"`
	Code                    string  `json:"code"`
	FloorArea               float64 `json:"floorArea"`
	MonthlyPrice            float64 `json:"monthlyPrice"`
	Status                  int     `json:"status"`
	StatusBeforeMaintenance *int    `json:"statusBeforeMaintenance,omitempty"`
}

// MaintenanceRequest yêu cầu bật/tắt bảo trì cho booth
type MaintenanceRequest struct {
	BoothID uint `json:"boothId"`
	Enable  bool `json:"enable"`
}
