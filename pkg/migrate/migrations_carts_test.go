package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCartMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_carts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CONSTRAINT carts_owner_id_key UNIQUE (owner_id)",
		"CREATE TABLE IF NOT EXISTS cart_line_items",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"CONSTRAINT cart_line_items_cart_product_size_key UNIQUE (cart_id, product_id, size)",
		"CHECK (quantity >= 1)",
		"DROP TABLE IF EXISTS cart_line_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCartLineItemsDoNotReferenceProducts(t *testing.T) {
	content := readMigration(t, "*_create_carts.sql")

	// A cascade (or any FK) from line items to products would let a catalog
	// deletion remove cart rows underneath the stored cart totals.
	if strings.Contains(content, "REFERENCES products") {
		t.Error("cart_line_items must not declare a foreign key to products")
	}
}

func TestOrderMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CHECK (status IN ('Processing', 'OutForDelivery', 'Delivered'))",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS order_line_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
