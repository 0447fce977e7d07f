package shows

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatMap maps a seat label to the id of the user whose paid booking holds
// it. A label is a key only while held by a confirmed booking; absence
// means the seat is free.
type SeatMap map[string]string

// Value implements driver.Valuer so gorm persists the map as JSONB.
func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		m = SeatMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *SeatMap) Scan(value interface{}) error {
	if value == nil {
		*m = SeatMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported seat map type %T", value)
	}
	if len(data) == 0 {
		*m = SeatMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Labels returns the occupied seat labels.
func (m SeatMap) Labels() []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	return labels
}

// Show defines a single screening
type Show struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieTitle   string    `json:"movie_title" gorm:"not null;size:255"`
	ShowDateTime time.Time `json:"show_date_time" gorm:"not null;index"`
	ShowPrice    float64   `json:"show_price" gorm:"not null;check:show_price >= 0"`
	City         string    `json:"city" gorm:"size:100"`
	Theater      string    `json:"theater" gorm:"size:255"`
	Screen       string    `json:"screen" gorm:"size:50"`

	// Single source of truth for seat contention. Mutated only when a
	// booking transitions to paid, via a field-level JSONB merge.
	OccupiedSeats SeatMap `json:"occupied_seats" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Show
func (Show) TableName() string {
	return "shows"
}

type ReleaseSeatsRequest struct {
	Seats []string `json:"seats" binding:"required,min=1"`
}

type AddShowRequest struct {
	MovieTitle   string    `json:"movieTitle" binding:"required"`
	ShowDateTime time.Time `json:"showDateTime" binding:"required"`
	ShowPrice    float64   `json:"showPrice" binding:"required,gt=0"`
	City         string    `json:"city"`
	Theater      string    `json:"theater"`
	Screen       string    `json:"screen"`
}
