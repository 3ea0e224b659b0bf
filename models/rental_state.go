package models

import (
	"errors"

	"booth/constants"
)

// RentalState định nghĩa interface cho các trạng thái rental
type RentalState interface {
	Activate(rental *Rental) error
	Cancel(rental *Rental) error
	Complete(rental *Rental) error
	Expire(rental *Rental) error
}

// DraftState trạng thái nháp, chưa thanh toán
type DraftState struct{}

func (s *DraftState) Activate(rental *Rental) error {
	rental.Status = constants.RentalStatusActive
	return nil
}

func (s *DraftState) Cancel(rental *Rental) error {
	rental.Status = constants.RentalStatusCancelled
	return nil
}

func (s *DraftState) Complete(rental *Rental) error {
	return errors.New("cannot complete draft rental")
}

func (s *DraftState) Expire(rental *Rental) error {
	return errors.New("cannot expire draft rental")
}

// ActiveState trạng thái đang thuê
type ActiveState struct{}

func (s *ActiveState) Activate(rental *Rental) error {
	return errors.New("rental already active")
}

func (s *ActiveState) Cancel(rental *Rental) error {
	rental.Status = constants.RentalStatusCancelled
	return nil
}

func (s *ActiveState) Complete(rental *Rental) error {
	rental.Status = constants.RentalStatusCompleted
	return nil
}

func (s *ActiveState) Expire(rental *Rental) error {
	rental.Status = constants.RentalStatusExpired
	return nil
}

// ExtendedState trạng thái đã gia hạn
type ExtendedState struct{}

func (s *ExtendedState) Activate(rental *Rental) error {
	return errors.New("rental already active")
}

func (s *ExtendedState) Cancel(rental *Rental) error {
	rental.Status = constants.RentalStatusCancelled
	return nil
}

func (s *ExtendedState) Complete(rental *Rental) error {
	rental.Status = constants.RentalStatusCompleted
	return nil
}

func (s *ExtendedState) Expire(rental *Rental) error {
	rental.Status = constants.RentalStatusExpired
	return nil
}

// CompletedState trạng thái hoàn thành
type CompletedState struct{}

func (s *CompletedState) Activate(rental *Rental) error {
	return errors.New("rental already completed")
}

func (s *CompletedState) Cancel(rental *Rental) error {
	return errors.New("cannot cancel completed rental")
}

func (s *CompletedState) Complete(rental *Rental) error {
	return errors.New("rental already completed")
}

func (s *CompletedState) Expire(rental *Rental) error {
	return errors.New("cannot expire completed rental")
}

// CancelledState trạng thái đã hủy, terminal
type CancelledState struct{}

func (s *CancelledState) Activate(rental *Rental) error {
	return errors.New("cannot activate cancelled rental")
}

func (s *CancelledState) Cancel(rental *Rental) error {
	return errors.New("rental already cancelled")
}

func (s *CancelledState) Complete(rental *Rental) error {
	return errors.New("cannot complete cancelled rental")
}

func (s *CancelledState) Expire(rental *Rental) error {
	return errors.New("cannot expire cancelled rental")
}

// ExpiredState trạng thái hết hạn, terminal
type ExpiredState struct{}

func (s *ExpiredState) Activate(rental *Rental) error {
	return errors.New("cannot activate expired rental")
}

func (s *ExpiredState) Cancel(rental *Rental) error {
	return errors.New("cannot cancel expired rental")
}

func (s *ExpiredState) Complete(rental *Rental) error {
	return errors.New("cannot complete expired rental")
}

func (s *ExpiredState) Expire(rental *Rental) error {
	return errors.New("rental already expired")
}

// GetRentalState trả về state tương ứng với trạng thái rental
func GetRentalState(status int) RentalState {
	switch status {
	case constants.RentalStatusDraft:
		return &DraftState{}
	case constants.RentalStatusActive:
		return &ActiveState{}
	case constants.RentalStatusExtended:
		return &ExtendedState{}
	case constants.RentalStatusCompleted:
		return &CompletedState{}
	case constants.RentalStatusCancelled:
		return &CancelledState{}
	case constants.RentalStatusExpired:
		return &ExpiredState{}
	default:
		return &DraftState{}
	}
}
