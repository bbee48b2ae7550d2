package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetcore/m/domain"
)

func (ts *testServer) addAppointment(t *testing.T, ownerID, petID int64, day string) int64 {
	t.Helper()
	var id int64
	err := ts.db.QueryRowx(
		`INSERT INTO appointments (owner_id, pet_id, appointment_date, appointment_time, type, status, created_at)
         VALUES ($1, $2, $3, '11:00', 'walk-in', 'scheduled', $4) RETURNING id`,
		ownerID, petID, day, time.Now().UTC().Format(timestampLayout)).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestMedicalRecordCompletesAppointment(t *testing.T) {
	ts := newTestServer(t)
	doctorID, doctor := ts.addStaff(t, "Dr. Anand", "dranand", "doctor")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/doctor/appointments/%d/medical-record", apptID), doctor,
		map[string]string{"diagnosis": "Mild dermatitis", "treatment": "Topical ointment"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var record domain.MedicalRecord
	decodeBody(t, rec, &record)
	assert.Equal(t, doctorID, record.DoctorID)
	assert.Equal(t, "Mild dermatitis", record.Diagnosis)

	var status string
	require.NoError(t, ts.db.Get(&status, `SELECT status FROM appointments WHERE id = $1`, apptID))
	assert.Equal(t, domain.StatusCompleted, status)
}

func TestSecondMedicalRecordRejected(t *testing.T) {
	ts := newTestServer(t)
	_, doctor := ts.addStaff(t, "Dr. Anand", "dranand", "doctor")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))

	path := fmt.Sprintf("/doctor/appointments/%d/medical-record", apptID)
	rec := ts.do(t, http.MethodPost, path, doctor, map[string]string{"diagnosis": "Ear infection"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, path, doctor, map[string]string{"diagnosis": "Something else"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The original record is untouched.
	var diagnosis string
	require.NoError(t, ts.db.Get(&diagnosis,
		`SELECT diagnosis FROM medical_records WHERE appointment_id = $1`, apptID))
	assert.Equal(t, "Ear infection", diagnosis)
}

func TestUpdateOthersRecordForbidden(t *testing.T) {
	ts := newTestServer(t)
	_, author := ts.addStaff(t, "Dr. Anand", "dranand", "doctor")
	_, other := ts.addStaff(t, "Dr. Meena", "drmeena", "doctor")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/doctor/appointments/%d/medical-record", apptID), author,
		map[string]string{"diagnosis": "Sprain"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var record domain.MedicalRecord
	decodeBody(t, rec, &record)

	path := fmt.Sprintf("/doctor/medical-records/%d", record.ID)
	rec = ts.do(t, http.MethodPut, path, other, map[string]string{"diagnosis": "Fracture"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPut, path, author, map[string]string{"diagnosis": "Hairline fracture"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCompleteAppointment(t *testing.T) {
	ts := newTestServer(t)
	_, doctor := ts.addStaff(t, "Dr. Anand", "dranand", "doctor")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))

	rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/doctor/appointments/%d/complete", apptID), doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/doctor/appointments/9999/complete", doctor, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPetMedicalHistory(t *testing.T) {
	ts := newTestServer(t)
	_, doctor := ts.addStaff(t, "Dr. Anand", "dranand", "doctor")
	ownerID, petID := ts.addOwnerPet(t)

	for _, diagnosis := range []string{"Checkup", "Vaccination reaction"} {
		apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
		rec := ts.do(t, http.MethodPost, fmt.Sprintf("/doctor/appointments/%d/medical-record", apptID), doctor,
			map[string]string{"diagnosis": diagnosis})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/doctor/pets/%d/history", petID), doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []medicalRecordView
	decodeBody(t, rec, &history)
	assert.Len(t, history, 2)
	assert.Equal(t, "Bruno", history[0].PetName)
	assert.Equal(t, "Dr. Anand", history[0].DoctorName)
}
