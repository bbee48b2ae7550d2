package seed

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"vetcore/m/domain"
)

// EnsureAdmin creates the bootstrap admin account when no active admin
// exists. Without it a fresh database would be unreachable behind auth.
func EnsureAdmin(db *sqlx.DB) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM staff_users WHERE role = $1 AND is_active = 1`, domain.RoleAdmin); err != nil {
		log.Printf("unable to check for admin account: %v", err)
		return
	}
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("unable to hash bootstrap password: %v", err)
		return
	}
	_, err = db.Exec(
		`INSERT INTO staff_users (name, username, email, role, password_hash, is_active, created_at)
         VALUES ($1, $2, $3, $4, $5, 1, $6)`,
		"Clinic Admin", "admin", "admin@vetcore.in", domain.RoleAdmin,
		string(hash), time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		log.Printf("unable to create bootstrap admin: %v", err)
		return
	}
	log.Printf("seeded bootstrap admin account (username admin)")
}

// LoadDemoData inserts a small demo dataset: staff, the service catalog and
// inventory. Safe to re-run; inserts are guarded by unique keys or lookups.
func LoadDemoData(db *sqlx.DB) {
	now := time.Now().UTC().Format("2006-01-02 15:04:05")

	staff := []struct{ name, username, email, role, password string }{
		{"Dr. Anand Krishnan", "dranand", "anand@vetcore.in", domain.RoleDoctor, "doctor123"},
		{"Dr. Meena Pillai", "drmeena", "meena@vetcore.in", domain.RoleDoctor, "doctor123"},
		{"Riya Thomas", "riya", "riya@vetcore.in", domain.RoleReceptionist, "recep123"},
		{"James Mathew", "james", "james@vetcore.in", domain.RoleReceptionist, "recep123"},
	}
	for _, s := range staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("unable to hash demo password for %s: %v", s.username, err)
			continue
		}
		if _, err := db.Exec(
			`INSERT INTO staff_users (name, username, email, role, password_hash, is_active, created_at)
             VALUES ($1, $2, $3, $4, $5, 1, $6)
             ON CONFLICT (username) DO NOTHING`,
			s.name, s.username, s.email, s.role, string(hash), now); err != nil {
			log.Printf("unable to seed staff %s: %v", s.username, err)
		}
	}

	services := []struct {
		name, category string
		price          string
	}{
		{"General Consultation", "consultation", "500"},
		{"Vaccination", "vaccination", "800"},
		{"Grooming", "grooming", "1200"},
		{"Surgery - Minor", "surgery", "5000"},
		{"Deworming", "treatment", "300"},
		{"Dental Cleaning", "treatment", "1500"},
	}
	for _, s := range services {
		if _, err := db.Exec(
			`INSERT INTO services (name, category, price, is_active) VALUES ($1, $2, $3, 1)
             ON CONFLICT (name) DO NOTHING`,
			s.name, s.category, s.price); err != nil {
			log.Printf("unable to seed service %s: %v", s.name, err)
		}
	}

	today := time.Now().UTC()
	expiry := func(days int) string { return today.AddDate(0, 0, days).Format("2006-01-02") }
	items := []struct {
		name, category, unit string
		qty, reorder         int64
		expiry, cost         string
	}{
		{"Rabies Vaccine", "vaccine", "vial", 40, 10, expiry(45), "350"},
		{"Amoxicillin 250mg", "medicine", "strip", 8, 15, expiry(20), "60"},
		{"Surgical Gloves", "consumable", "box", 25, 5, "", "200"},
		{"Dewormer Syrup", "medicine", "bottle", 12, 10, expiry(5), "90"},
	}
	for _, it := range items {
		var exists int
		if err := db.Get(&exists, `SELECT COUNT(*) FROM inventory_items WHERE name = $1`, it.name); err != nil || exists > 0 {
			continue
		}
		var expiryDate *string
		if it.expiry != "" {
			expiryDate = &it.expiry
		}
		if _, err := db.Exec(
			`INSERT INTO inventory_items (name, category, quantity, unit, reorder_level, expiry_date, cost_price, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.name, it.category, it.qty, it.unit, it.reorder, expiryDate, it.cost, now); err != nil {
			log.Printf("unable to seed inventory item %s: %v", it.name, err)
		}
	}

	log.Printf("demo data seeded")
}
