package domain

// MedicalRecord is the clinical outcome of one appointment. At most one
// record exists per appointment; only the authoring doctor may edit it.
type MedicalRecord struct {
	ID            int64   `db:"id" json:"id"`
	AppointmentID int64   `db:"appointment_id" json:"appointment_id"`
	DoctorID      int64   `db:"doctor_id" json:"doctor_id"`
	Diagnosis     string  `db:"diagnosis" json:"diagnosis"`
	Symptoms      *string `db:"symptoms" json:"symptoms,omitempty"`
	Treatment     *string `db:"treatment" json:"treatment,omitempty"`
	Prescription  *string `db:"prescription" json:"prescription,omitempty"`
	Notes         *string `db:"notes" json:"notes,omitempty"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}
