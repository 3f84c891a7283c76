package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the demographic record kept by the patient store. The interview
// and advisory flows only ever consult the identifier.
type Patient struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Age       int       `json:"age,omitempty" db:"age"`
	Sex       string    `json:"sex,omitempty" db:"sex"`
	MRN       string    `json:"mrn,omitempty" db:"mrn"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
