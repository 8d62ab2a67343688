package clinic

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Visit types with their default consultation prices.
const (
	VisitCheckup  = "checkup"
	VisitFollowup = "followup"
)

// DefaultPrice returns the standard price for a visit type, or zero for an
// unknown one.
func DefaultPrice(visitType string) decimal.Decimal {
	switch visitType {
	case VisitCheckup:
		return decimal.NewFromInt(200)
	case VisitFollowup:
		return decimal.NewFromInt(120)
	}
	return decimal.Zero
}

// Visit is one patient visit. Price is stored as entered: legacy records
// hold free-text values, so it stays a string and is parsed defensively at
// aggregation time. VisitAt is nil on legacy rows written before the
// timestamp existed. DoctorID is the recording doctor, set from the
// authenticated caller.
type Visit struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	NationalID string     `db:"national_id" json:"national_id"`
	Age        int        `db:"age" json:"age"`
	Address    string     `db:"address" json:"address"`
	VisitType  string     `db:"visit_type" json:"visit_type"`
	Price      string     `db:"price" json:"price"`
	VisitAt    *time.Time `db:"visit_at" json:"visit_at"`
	DoctorID   string     `db:"created_by" json:"doctor_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ParsePrice reads a visit's price. Unparseable values yield zero, never
// an error: a bad legacy record must not poison a summary.
func ParsePrice(price string) decimal.Decimal {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero
	}
	return d
}
