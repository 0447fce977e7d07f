package bookings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatList persists the ordered seat labels a booking claims as JSONB.
type SeatList []string

func (l SeatList) Value() (driver.Value, error) {
	if l == nil {
		l = SeatList{}
	}
	return json.Marshal(l)
}

func (l *SeatList) Scan(value interface{}) error {
	if value == nil {
		*l = SeatList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported seat list type %T", value)
	}
	if len(data) == 0 {
		*l = SeatList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// PaymentDetails is populated exactly once, when the booking is
// reconciled. ManualVerification distinguishes operator overrides from
// gateway-confirmed payments in the audit trail.
type PaymentDetails struct {
	ReferenceID        string     `json:"reference_id,omitempty"`
	PaymentMode        string     `json:"payment_mode,omitempty"`
	TxMsg              string     `json:"tx_msg,omitempty"`
	TxTime             string     `json:"tx_time,omitempty"`
	Signature          string     `json:"signature,omitempty"`
	ManualVerification bool       `json:"manual_verification,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}

// Booking is one attempted or confirmed seat purchase.
type Booking struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	ShowID      uuid.UUID `json:"show_id" gorm:"type:uuid;index;not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	BookedSeats SeatList  `json:"booked_seats" gorm:"type:jsonb;not null"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);check:payment_status IN ('pending', 'paid', 'failed');default:'pending';index"`
	// IsPaid mirrors PaymentStatus == paid; kept for the client contract.
	IsPaid      bool   `json:"is_paid" gorm:"default:false"`
	PaymentLink string `json:"payment_link,omitempty" gorm:"size:1024"`

	PaymentDetails PaymentDetails `json:"payment_details" gorm:"embedded;embeddedPrefix:payment_"`

	// NeedsRefund flags a booking that lost the seat race after its
	// payment succeeded; routed to the support queue, never silently
	// dropped.
	NeedsRefund   bool   `json:"needs_refund" gorm:"default:false"`
	FailureReason string `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.PaymentStatus == StatusPending
}

func (b *Booking) OrderID() string {
	return OrderID(b.ID)
}
