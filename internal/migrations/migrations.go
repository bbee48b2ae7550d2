package migrations

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the clinic backend.
// Date, time and timestamp columns are TEXT; the application writes them
// explicitly so rows scan identically on SQLite and PostgreSQL.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS staff_users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            role TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS owners (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            email TEXT,
            address TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS pets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            species TEXT NOT NULL,
            breed TEXT,
            age INTEGER,
            FOREIGN KEY(owner_id) REFERENCES owners(id)
        );`,
		`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL,
            pet_id INTEGER NOT NULL,
            appointment_date TEXT NOT NULL,
            appointment_time TEXT NOT NULL,
            type TEXT NOT NULL,
            status TEXT NOT NULL,
            notes TEXT,
            created_at TEXT NOT NULL,
            FOREIGN KEY(owner_id) REFERENCES owners(id),
            FOREIGN KEY(pet_id) REFERENCES pets(id)
        );`,
		`CREATE TABLE IF NOT EXISTS medical_records (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            appointment_id INTEGER NOT NULL UNIQUE,
            doctor_id INTEGER NOT NULL,
            diagnosis TEXT NOT NULL,
            symptoms TEXT,
            treatment TEXT,
            prescription TEXT,
            notes TEXT,
            created_at TEXT NOT NULL,
            FOREIGN KEY(appointment_id) REFERENCES appointments(id),
            FOREIGN KEY(doctor_id) REFERENCES staff_users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS services (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            category TEXT,
            price TEXT NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1
        );`,
		`CREATE TABLE IF NOT EXISTS invoices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_number TEXT NOT NULL UNIQUE,
            appointment_id INTEGER NOT NULL,
            owner_id INTEGER NOT NULL,
            total_amount TEXT NOT NULL,
            discount_pct TEXT NOT NULL DEFAULT '0',
            final_amount TEXT NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'pending',
            payment_method TEXT,
            created_at TEXT NOT NULL,
            FOREIGN KEY(appointment_id) REFERENCES appointments(id),
            FOREIGN KEY(owner_id) REFERENCES owners(id)
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id INTEGER NOT NULL,
            service_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 1,
            unit_price TEXT NOT NULL,
            line_total TEXT NOT NULL,
            FOREIGN KEY(invoice_id) REFERENCES invoices(id),
            FOREIGN KEY(service_id) REFERENCES services(id)
        );`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            category TEXT,
            quantity INTEGER NOT NULL DEFAULT 0,
            unit TEXT,
            reorder_level INTEGER NOT NULL DEFAULT 10,
            expiry_date TEXT,
            cost_price TEXT,
            updated_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS inventory_logs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_id INTEGER NOT NULL,
            change_qty INTEGER NOT NULL,
            reason TEXT NOT NULL,
            performed_by INTEGER NOT NULL,
            created_at TEXT NOT NULL,
            FOREIGN KEY(item_id) REFERENCES inventory_items(id),
            FOREIGN KEY(performed_by) REFERENCES staff_users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS notification_logs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL,
            appointment_id INTEGER,
            channel TEXT NOT NULL,
            message TEXT NOT NULL,
            status TEXT NOT NULL,
            sent_at TEXT NOT NULL,
            FOREIGN KEY(owner_id) REFERENCES owners(id),
            FOREIGN KEY(appointment_id) REFERENCES appointments(id)
        );`,
	}

	for _, stmt := range schema {
		if db.DriverName() == "pgx" {
			stmt = strings.ReplaceAll(stmt, "INTEGER PRIMARY KEY AUTOINCREMENT", "SERIAL PRIMARY KEY")
		}
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
