package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"vetcore/m/internal/config"
	"vetcore/m/internal/migrations"
	"vetcore/m/internal/notify"
)

type testServer struct {
	h      *Handler
	db     *sqlx.DB
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "clinic_test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	cfg := config.Config{
		Secret:           "test_secret",
		JWTExpireMinutes: 60,
		AllowedOrigins:   []string{"http://localhost:3000"},
		ClinicName:       "VetCore Pet Clinic",
	}
	h := New(db, cfg, notify.New(db, zap.NewNop()))
	return &testServer{h: h, db: db, router: h.Router()}
}

// addStaff inserts an active staff user and returns its id and a valid token.
func (ts *testServer) addStaff(t *testing.T, name, username, role string) (int64, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	var id int64
	err = ts.db.QueryRowx(
		`INSERT INTO staff_users (name, username, email, role, password_hash, is_active, created_at)
         VALUES ($1, $2, $3, $4, $5, 1, $6) RETURNING id`,
		name, username, username+"@clinic.test", role, string(hash),
		time.Now().UTC().Format(timestampLayout)).Scan(&id)
	require.NoError(t, err)
	token, err := ts.h.generateToken(id, role)
	require.NoError(t, err)
	return id, token
}

func (ts *testServer) addOwnerPet(t *testing.T) (ownerID, petID int64) {
	t.Helper()
	err := ts.db.QueryRowx(
		`INSERT INTO owners (name, phone, email, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		"Asha Rao", "9000000001", nil, nil).Scan(&ownerID)
	require.NoError(t, err)
	err = ts.db.QueryRowx(
		`INSERT INTO pets (owner_id, name, species, breed, age) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ownerID, "Bruno", "dog", nil, nil).Scan(&petID)
	require.NoError(t, err)
	return ownerID, petID
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		require.NoError(t, json.NewEncoder(buf).Encode(body))
		reader = buf
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func (ts *testServer) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, ts.db.Get(&n, query, args...))
	return n
}
