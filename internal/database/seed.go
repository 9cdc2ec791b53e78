package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategory describes one node of the development category tree.
// Children are inserted after their parent so levels can be derived.
type seedCategory struct {
	name        string
	description string
	icon        string
	color       string
	children    []seedCategory
}

var seedCategories = []seedCategory{
	{name: "Electronics", description: "Devices and accessories", icon: "cpu", color: "#2563eb", children: []seedCategory{
		{name: "Phones", description: "Mobile phones", icon: "smartphone", color: "#3b82f6", children: []seedCategory{
			{name: "Smartphones", icon: "smartphone", color: "#60a5fa"},
			{name: "Phone Cases", icon: "shield", color: "#93c5fd"},
		}},
		{name: "Audio", description: "Headphones and speakers", icon: "headphones", color: "#1d4ed8"},
	}},
	{name: "Home & Garden", description: "Everything for the home", icon: "home", color: "#16a34a", children: []seedCategory{
		{name: "Pots", description: "Planters and pots", icon: "flower", color: "#22c55e"},
	}},
}

// Seed populates the database with initial development data.
// It creates a default admin user and a small category tree, each only if
// the corresponding table is empty.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCatalog(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@storefront.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@storefront.local",
		"password", "admin",
	)
	return nil
}

func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("categories already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertSeedCategories(tx, seedCategories, nil, 0)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with category tree", "categories", inserted)
	return nil
}

func insertSeedCategories(tx *sql.Tx, nodes []seedCategory, parentID *string, level int) (int, error) {
	total := 0
	for _, n := range nodes {
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (name, description, icon, color, parent_id, is_parent, level)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, n.name, n.description, n.icon, n.color, parentID, len(n.children) > 0, level).Scan(&id)
		if err != nil {
			return total, fmt.Errorf("seed insert category %q: %w", n.name, err)
		}
		total++

		sub, err := insertSeedCategories(tx, n.children, &id, level+1)
		total += sub
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
