package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/darshit3596/shreejida/internal/model"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AddUser inserts a user. Returns ErrDuplicate if the username is taken.
func (s *Store) AddUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, passwordHash) VALUES (?, ?)`,
		u.Username, u.PasswordHash,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("add user %q: %w", u.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET passwordHash = ? WHERE username = ?`, passwordHash, username)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return requireRow(res, "update user password", username)
}

// AddInvoice inserts an invoice row. Returns ErrDuplicate if the id exists.
func (s *Store) AddInvoice(ctx context.Context, inv model.Invoice) error {
	return insertInvoice(ctx, s.db, inv)
}

func insertInvoice(ctx context.Context, ex execer, inv model.Invoice) error {
	itemsJSON, err := marshalItems(inv.Items)
	if err != nil {
		return fmt.Errorf("add invoice: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO invoices
		(id, customerName, vehicle, vehicleNo, mobileNo, km, date, items,
		 subTotal, taxPercent, discountAmount, total, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.CustomerName,
		inv.Vehicle,
		inv.VehicleNo,
		inv.MobileNo,
		inv.KM,
		inv.Date,
		itemsJSON,
		inv.SubTotal,
		inv.TaxPercent,
		inv.DiscountAmount,
		inv.Total,
		string(inv.Status),
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("add invoice %s: %w", inv.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("add invoice: %w", err)
	}
	return nil
}

// UpdateInvoiceStatus sets the status of one invoice. Status is the only
// invoice column that changes after creation.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return requireRow(res, "update invoice status", id)
}

// DeleteInvoice removes an invoice. The settings counter is left alone so
// the id is never issued again.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRow(res, "delete invoice", id)
}

// AddInventoryItem inserts an inventory row.
func (s *Store) AddInventoryItem(ctx context.Context, it model.InventoryItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory (id, name, quantity, price, minStock) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.Name, it.Quantity, it.Price, it.MinStock,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("add inventory item %s: %w", it.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("add inventory item: %w", err)
	}
	return nil
}

// UpdateInventoryItem overwrites every column of an existing inventory row.
func (s *Store) UpdateInventoryItem(ctx context.Context, it model.InventoryItem) error {
	return updateInventoryItem(ctx, s.db, it)
}

func updateInventoryItem(ctx context.Context, ex execer, it model.InventoryItem) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE inventory SET name = ?, quantity = ?, price = ?, minStock = ? WHERE id = ?`,
		it.Name, it.Quantity, it.Price, it.MinStock, it.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return requireRow(res, "update inventory item", it.ID)
}

// DeleteInventoryItem removes an inventory row.
func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return requireRow(res, "delete inventory item", id)
}

// UpdateSettings writes every settings key in one transaction. Keys missing
// from the table are inserted.
func (s *Store) UpdateSettings(ctx context.Context, settings model.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update settings: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := upsertSettings(ctx, tx, settings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update settings: commit: %w", err)
	}
	return nil
}

func upsertSettings(ctx context.Context, ex execer, settings model.Settings) error {
	rows, err := marshalSettings(settings)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	for _, r := range rows {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, r.key, r.value)
		if err != nil {
			return fmt.Errorf("update settings: %q: %w", r.key, err)
		}
	}
	return nil
}

// CommitInvoice atomically writes a new invoice, the inventory rows its
// lines decremented, and the settings carrying the advanced counter.
//
// Either all rows are written or, on any error, none are.
func (s *Store) CommitInvoice(
	ctx context.Context,
	inv model.Invoice,
	touched []model.InventoryItem,
	settings model.Settings,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit invoice: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Step 1: invoice row (fails on a reused id)
	if err := insertInvoice(ctx, tx, inv); err != nil {
		return fmt.Errorf("commit invoice: %w", err)
	}

	// Step 2: decremented inventory rows
	for _, it := range touched {
		if err := updateInventoryItem(ctx, tx, it); err != nil {
			return fmt.Errorf("commit invoice: %w", err)
		}
	}

	// Step 3: counter
	if err := upsertSettings(ctx, tx, settings); err != nil {
		return fmt.Errorf("commit invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice: commit: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, op, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, key, ErrNotFound)
	}
	return nil
}
