package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olahol/melody"
)

// Loại sự kiện domain phát ra khi đối soát xong một giao dịch
const (
	EventPaymentCompleted = "PaymentCompleted"
	EventPaymentFailed    = "PaymentFailed"
)

// Service định nghĩa interface gửi thông báo
type Service interface {
	SendMessage(message string) error
}

// MelodyService broadcast thông báo qua websocket
type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) SendMessage(message string) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.Broadcast([]byte(message))
}

// PaymentEvent sự kiện thanh toán phát cho các consumer bên ngoài
type PaymentEvent struct {
	Type        string    `json:"type"`
	UserID      uint      `json:"userId"`
	ExternalRef string    `json:"externalRef"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	RentalIDs   []uint    `json:"rentalIds"`
	Timestamp   time.Time `json:"timestamp"`
}

// Build serialize sự kiện thành JSON để broadcast
func (e *PaymentEvent) Build() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"type":"%s"}`, e.Type)
	}
	return string(data)
}
