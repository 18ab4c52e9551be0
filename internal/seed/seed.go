// Package seed loads the demo menu and staff accounts into an empty database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

type menuItem struct {
	name        string
	description string
	price       string
	category    string
	tags        []string
	allergens   []string
}

var categories = []string{
	"Starters & Soups",
	"Mains",
	"Sides & Grains",
	"Desserts",
	"Beverages & Drinks",
}

var menuItems = []menuItem{
	{"Sambusa", "Crispy pastry filled with spiced lentils", "12.00", "Starters & Soups", []string{"vegan"}, []string{"gluten"}},
	{"Azifa", "Green lentil salad with mustard and lime", "14.00", "Starters & Soups", []string{"vegan", "cold"}, nil},
	{"Kik Alicha Soup", "Mild split pea soup with turmeric", "16.00", "Starters & Soups", []string{"vegetarian"}, nil},
	{"Doro Wat", "Slow-cooked chicken stew with berbere and boiled egg", "38.00", "Mains", []string{"spicy", "signature"}, []string{"egg"}},
	{"Kitfo", "Minced beef with mitmita and niter kibbeh", "42.00", "Mains", []string{"signature"}, []string{"dairy"}},
	{"Tibs", "Sauteed beef cubes with rosemary and jalapeno", "40.00", "Mains", nil, nil},
	{"Shiro Wat", "Ground chickpea stew simmered with garlic", "28.00", "Mains", []string{"vegan"}, nil},
	{"Gomen Besiga", "Collard greens braised with tender beef", "34.00", "Mains", nil, nil},
	{"Injera Basket", "Four rolls of fresh teff injera", "8.00", "Sides & Grains", []string{"vegan"}, []string{"gluten"}},
	{"Ayib", "Fresh Ethiopian cottage cheese", "10.00", "Sides & Grains", []string{"vegetarian"}, []string{"dairy"}},
	{"Atkilt Wat", "Cabbage, carrot and potato in mild sauce", "18.00", "Sides & Grains", []string{"vegan"}, nil},
	{"Baklava", "Honey-soaked layered pastry with pistachio", "16.00", "Desserts", []string{"vegetarian"}, []string{"gluten", "nuts"}},
	{"Tiramisu Habesha", "Coffee-ceremony tiramisu with bunna", "18.00", "Desserts", []string{"vegetarian"}, []string{"dairy", "egg"}},
	{"Ethiopian Coffee", "Traditional bunna, roasted to order", "10.00", "Beverages & Drinks", []string{"hot"}, nil},
	{"Spris Juice", "Layered avocado, mango and papaya juice", "14.00", "Beverages & Drinks", []string{"vegan", "cold"}, nil},
	{"Tej", "House honey wine", "22.00", "Beverages & Drinks", nil, nil},
}

type account struct {
	username string
	role     string
	fullName string
}

var accounts = []account{
	{"chef", enum.UserRoleChef, "Kitchen Display"},
	{"admin", enum.UserRoleAdmin, "Front of House"},
	{"owner", enum.UserRoleOwner, "Restaurant Owner"},
	{"developer", enum.UserRoleDeveloper, "Platform Developer"},
}

// IfEmpty seeds demo data when the menu is empty. Safe to run on every start.
func IfEmpty(ctx context.Context, q *database.Queries, password string) error {
	n, err := q.CountMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if n > 0 {
		return nil
	}
	log.Println("empty database, seeding demo data")
	return Run(ctx, q, password)
}

// Run loads categories, menu items and staff accounts unconditionally.
// Existing rows with the same natural keys are left alone.
func Run(ctx context.Context, q *database.Queries, password string) error {
	for _, name := range categories {
		// CreateCategory reports an existing name as no rows; reseeding
		// tolerates it.
		if _, err := q.CreateCategory(ctx, name); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("create category %q: %w", name, err)
		}
	}

	for _, item := range menuItems {
		var price pgtype.Numeric
		if err := price.Scan(item.price); err != nil {
			return fmt.Errorf("parse price for %q: %w", item.name, err)
		}
		_, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Name:        item.name,
			Description: item.description,
			Price:       price,
			Category:    item.category,
			IsAvailable: true,
			Tags:        item.tags,
			Allergens:   item.allergens,
		})
		if err != nil {
			return fmt.Errorf("create menu item %q: %w", item.name, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	for _, a := range accounts {
		_, err := q.CreateUser(ctx, database.CreateUserParams{
			Username:       a.username,
			HashedPassword: string(hash),
			Role:           a.role,
			FullName:       a.fullName,
		})
		if err != nil {
			return fmt.Errorf("create user %q: %w", a.username, err)
		}
	}

	log.Printf("seeded %d categories, %d menu items, %d accounts",
		len(categories), len(menuItems), len(accounts))
	return nil
}
