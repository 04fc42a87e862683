package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Harden applies the raw-SQL migrations AutoMigrate cannot express:
// - Money column types (NUMERIC(12,2))
// - Partial unique index on sales.invoice_number (quotations stay NULL)
// - Indexes for sale_items, sale_revisions and notifications
// - Foreign key: sale_items.product_id -> products.id
// - Basic CHECK constraints
// All statements are idempotent.
func Harden() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE products    ALTER COLUMN price            TYPE numeric(12,2)`,
			`ALTER TABLE sales       ALTER COLUMN total            TYPE numeric(12,2)`,
			`ALTER TABLE sales       ALTER COLUMN discount         TYPE numeric(12,2)`,
			`ALTER TABLE sales       ALTER COLUMN paid_amount      TYPE numeric(12,2)`,
			`ALTER TABLE sales       ALTER COLUMN remaining_amount TYPE numeric(12,2)`,
			`ALTER TABLE sale_items  ALTER COLUMN price            TYPE numeric(12,2)`,
			`ALTER TABLE expenses    ALTER COLUMN amount           TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_invoice_number ON sales (invoice_number) WHERE invoice_number IS NOT NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_sale_revisions_sale_id_version_no ON sale_revisions (sale_id, version_no)`,
			`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items (product_id)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Foreign key: sale_items.product_id -> products.id (RESTRICT/RESTRICT) ---
		fk := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1
		FROM pg_constraint
		WHERE conrelid = 'sale_items'::regclass
		  AND conname  = 'fk_sale_items_product'
	) THEN
		ALTER TABLE sale_items
		ADD CONSTRAINT fk_sale_items_product
		FOREIGN KEY (product_id)
		REFERENCES products(id)
		ON UPDATE RESTRICT
		ON DELETE RESTRICT;
	END IF;
END $$;`
		if err := tx.Exec(fk).Error; err != nil {
			return fmt.Errorf("foreign key migration failed: %w", err)
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Non-negative product price
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'products'::regclass
					  AND conname  = 'chk_products_price_nonneg'
				) THEN
					ALTER TABLE products
					ADD CONSTRAINT chk_products_price_nonneg
					CHECK (price >= 0);
				END IF;
			END $$;`,
			// Sale item quantity must be positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'sale_items'::regclass
					  AND conname  = 'chk_sale_items_quantity_pos'
				) THEN
					ALTER TABLE sale_items
					ADD CONSTRAINT chk_sale_items_quantity_pos
					CHECK (quantity > 0);
				END IF;
			END $$;`,
			// Expenses.amount >= 0
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'expenses'::regclass
					  AND conname  = 'chk_expenses_amount_nonneg'
				) THEN
					ALTER TABLE expenses
					ADD CONSTRAINT chk_expenses_amount_nonneg
					CHECK (amount >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
