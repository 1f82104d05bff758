package storage

import (
	"database/sql"
	"time"

	"ai-expense-tracker/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amount REAL NOT NULL,
			currency TEXT DEFAULT 'INR',
			category TEXT NOT NULL,
			description TEXT NOT NULL,
			merchant TEXT,
			original_input TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// InsertExpense writes a parsed candidate together with the user's original
// input and returns the fully materialized record, including the generated id
// and timestamp, by reading the row back.
func (db *DB) InsertExpense(candidate models.ParsedCandidate, originalInput string) (*models.Expense, error) {
	result, err := db.conn.Exec(
		`INSERT INTO expenses (amount, currency, category, description, merchant, original_input, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		candidate.Amount, candidate.Currency, candidate.Category,
		candidate.Description, candidate.Merchant, originalInput, time.Now(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetExpense(id)
}

// GetExpense retrieves a single expense by ID.
func (db *DB) GetExpense(id int64) (*models.Expense, error) {
	row := db.conn.QueryRow(
		`SELECT id, amount, currency, category, description, merchant, original_input, created_at
		 FROM expenses WHERE id = ?`,
		id,
	)

	var e models.Expense
	if err := row.Scan(&e.ID, &e.Amount, &e.Currency, &e.Category, &e.Description,
		&e.Merchant, &e.OriginalInput, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExpenses retrieves every expense, newest first. The id tiebreak keeps
// rows inserted within the same second in reverse insertion order.
func (db *DB) ListExpenses() ([]models.Expense, error) {
	rows, err := db.conn.Query(
		`SELECT id, amount, currency, category, description, merchant, original_input, created_at
		 FROM expenses ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Currency, &e.Category, &e.Description,
			&e.Merchant, &e.OriginalInput, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// DeleteExpense removes the expense with the given id. It reports whether a
// row existed and was removed; a missing id is not an error.
func (db *DB) DeleteExpense(id int64) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CategoryTotal holds aggregated spending for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// CategoryTotals returns per-category spending sums and counts, largest first.
func (db *DB) CategoryTotals() ([]CategoryTotal, error) {
	rows, err := db.conn.Query(
		`SELECT category, SUM(amount) as total, COUNT(*) as count
		 FROM expenses GROUP BY category ORDER BY total DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}

	return totals, rows.Err()
}

// ExpenseCount returns the number of expense rows.
func (db *DB) ExpenseCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM expenses").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
