package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/darshit3596/shreejida/internal/model"
)

// LoadAllData reads every table into the AppData aggregate.
//
// Returns empty slices (not nil) for empty tables.
func (s *Store) LoadAllData(ctx context.Context) (model.AppData, error) {
	users, err := s.readUsers(ctx)
	if err != nil {
		return model.AppData{}, fmt.Errorf("load all data: %w", err)
	}
	inventory, err := s.readInventory(ctx)
	if err != nil {
		return model.AppData{}, fmt.Errorf("load all data: %w", err)
	}
	invoices, err := s.readInvoices(ctx)
	if err != nil {
		return model.AppData{}, fmt.Errorf("load all data: %w", err)
	}
	settings, err := s.readSettings(ctx)
	if err != nil {
		return model.AppData{}, fmt.Errorf("load all data: %w", err)
	}

	return model.AppData{
		Users:     users,
		Invoices:  invoices,
		Inventory: inventory,
		Settings:  settings,
	}, nil
}

func (s *Store) readUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, passwordHash FROM users ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var hash sql.NullString
		if err := rows.Scan(&u.Username, &hash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.PasswordHash = hash.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *Store) readInventory(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, price, minStock FROM inventory ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	items := []model.InventoryItem{}
	for rows.Next() {
		var (
			it       model.InventoryItem
			name     sql.NullString
			quantity sql.NullInt64
			price    sql.NullFloat64
			minStock sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &name, &quantity, &price, &minStock); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		it.Name = name.String
		it.Quantity = quantity.Int64
		it.Price = price.Float64
		it.MinStock = minStock.Int64
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (s *Store) readInvoices(ctx context.Context) ([]model.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customerName, vehicle, vehicleNo, mobileNo, km, date, items,
		       subTotal, taxPercent, discountAmount, total, status
		FROM invoices
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []model.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

// scanInvoice tolerates NULL columns, which older files contain for fields
// that were left blank on the entry form.
func scanInvoice(rows *sql.Rows) (model.Invoice, error) {
	var (
		inv                                              model.Invoice
		customer, vehicle, vehicleNo, mobileNo, km, date sql.NullString
		items, status                                    sql.NullString
		subTotal, taxPercent, discount, total            sql.NullFloat64
	)
	err := rows.Scan(&inv.ID, &customer, &vehicle, &vehicleNo, &mobileNo, &km, &date,
		&items, &subTotal, &taxPercent, &discount, &total, &status)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("scan invoice: %w", err)
	}

	lineItems, err := unmarshalItems(items.String)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}

	inv.CustomerName = customer.String
	inv.Vehicle = vehicle.String
	inv.VehicleNo = vehicleNo.String
	inv.MobileNo = mobileNo.String
	inv.KM = km.String
	inv.Date = date.String
	inv.Items = lineItems
	inv.SubTotal = subTotal.Float64
	inv.TaxPercent = taxPercent.Float64
	inv.DiscountAmount = discount.Float64
	inv.Total = total.Float64
	inv.Status = model.InvoiceStatus(status.String)
	return inv, nil
}

func (s *Store) readSettings(ctx context.Context) (model.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY rowid ASC`)
	if err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var settingRows []settingRow
	for rows.Next() {
		var r settingRow
		var value sql.NullString
		if err := rows.Scan(&r.key, &value); err != nil {
			return model.Settings{}, fmt.Errorf("scan setting: %w", err)
		}
		r.value = value.String
		if !value.Valid {
			r.value = "null"
		}
		settingRows = append(settingRows, r)
	}
	if err := rows.Err(); err != nil {
		return model.Settings{}, fmt.Errorf("iterate settings: %w", err)
	}

	return unmarshalSettings(settingRows)
}

// CountRows returns the number of rows in table. Only the four schema tables
// are accepted.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	known := false
	for _, t := range requiredTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("count rows: unknown table %q", table)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return n, nil
}
