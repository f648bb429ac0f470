package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mataam/internal/core"

	_ "modernc.org/sqlite"
)

// MaxOrderListLimit caps how many orders a single listing query returns.
const MaxOrderListLimit = 500

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// --- categories ---

const categoryColumns = `id, name, name_en, description, image, color, icon,
	sort_order, featured, featured_order, status`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.NameEn, &c.Description, &c.Image,
		&c.Color, &c.Icon, &c.SortOrder, &c.Featured, &c.FeaturedOrder, &c.Status)
	return c, err
}

// ListCategories returns categories ordered by sort_order then name.
// With activeOnly set, inactive categories are filtered out.
func (r *SQLiteRepository) ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error) {
	q := "SELECT " + categoryColumns + " FROM categories"
	if activeOnly {
		q += " WHERE status = 'active'"
	}
	q += " ORDER BY sort_order, name"

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = core.StatusActive
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories
		(id, name, name_en, description, image, color, icon, sort_order, featured, featured_order, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.NameEn, c.Description, c.Image, c.Color, c.Icon,
		c.SortOrder, c.Featured, c.FeaturedOrder, c.Status)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET
		name = ?, name_en = ?, description = ?, image = ?, color = ?, icon = ?,
		sort_order = ?, featured = ?, featured_order = ?, status = ?,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, c.NameEn, c.Description, c.Image, c.Color, c.Icon,
		c.SortOrder, c.Featured, c.FeaturedOrder, c.Status, c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, ErrNotFound
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM menu_items WHERE category_id = ?", id).Scan(&n)
	if err != nil {
		return fmt.Errorf("count category items: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("category has %d items", n)
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- menu items ---

const itemColumns = `id, name, name_en, description, category_id,
	price_halalas, discount_price_halalas, cost_halalas, image, calories,
	preparation_time, status, featured, sort_order`

func scanItem(row interface{ Scan(...any) error }) (core.MenuItem, error) {
	var m core.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.NameEn, &m.Description, &m.CategoryID,
		&m.Price.Halalas, &m.DiscountPrice.Halalas, &m.Cost.Halalas,
		&m.Image, &m.Calories, &m.PreparationTime, &m.Status, &m.Featured, &m.SortOrder)
	return m, err
}

// ListItems returns menu items, optionally restricted to one category.
// With activeOnly set, only active items are returned (out-of-stock and
// inactive ones are hidden from the public menu).
func (r *SQLiteRepository) ListItems(ctx context.Context, categoryID string, activeOnly bool) ([]core.MenuItem, error) {
	q := "SELECT " + itemColumns + " FROM menu_items"
	var args []any
	var where []string
	if categoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, categoryID)
	}
	if activeOnly {
		where = append(where, "status = 'active'")
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY sort_order, name"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []core.MenuItem
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id string) (core.MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM menu_items WHERE id = ?", id)
	m, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return core.MenuItem{}, fmt.Errorf("get item: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) CreateItem(ctx context.Context, m core.MenuItem) (core.MenuItem, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Status == "" {
		m.Status = core.StatusActive
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO menu_items
		(id, name, name_en, description, category_id, price_halalas,
		 discount_price_halalas, cost_halalas, image, calories,
		 preparation_time, status, featured, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.NameEn, m.Description, m.CategoryID,
		m.Price.Halalas, m.DiscountPrice.Halalas, m.Cost.Halalas,
		m.Image, m.Calories, m.PreparationTime, m.Status, m.Featured, m.SortOrder)
	if err != nil {
		return core.MenuItem{}, fmt.Errorf("create item: %w", err)
	}

	slog.InfoContext(ctx, "Menu item created",
		"id", m.ID, "name", m.Name, "category_id", m.CategoryID,
		"price_halalas", m.Price.Halalas)
	return m, nil
}

func (r *SQLiteRepository) UpdateItem(ctx context.Context, m core.MenuItem) (core.MenuItem, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE menu_items SET
		name = ?, name_en = ?, description = ?, category_id = ?,
		price_halalas = ?, discount_price_halalas = ?, cost_halalas = ?,
		image = ?, calories = ?, preparation_time = ?, status = ?,
		featured = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		m.Name, m.NameEn, m.Description, m.CategoryID,
		m.Price.Halalas, m.DiscountPrice.Halalas, m.Cost.Halalas,
		m.Image, m.Calories, m.PreparationTime, m.Status,
		m.Featured, m.SortOrder, m.ID)
	if err != nil {
		return core.MenuItem{}, fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.MenuItem{}, ErrNotFound
	}
	return m, nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- orders ---

// CreateOrder persists the order and its lines in one transaction.
func (r *SQLiteRepository) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.Status == "" {
		o.Status = core.OrderPending
	}
	if o.Source == "" {
		o.Source = core.SourceWhatsApp
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO orders
		(id, order_number, total_halalas, discount_halalas, tips_halalas,
		 customer_name, customer_phone, customer_address, table_number,
		 status, order_date, source, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderNumber, o.TotalAmount.Halalas, o.DiscountAmount.Halalas,
		o.Tips.Halalas, o.CustomerInfo.Name, o.CustomerInfo.Phone,
		o.CustomerInfo.Address, o.CustomerInfo.TableNumber,
		o.Status, o.OrderDate.UTC(), o.Source, o.Notes)
	if err != nil {
		return core.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.ExecContext(ctx, `INSERT INTO order_lines
			(order_id, menu_item_id, menu_item_name, menu_item_name_en,
			 quantity, unit_price_halalas, total_price_halalas)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, l.MenuItemID, l.MenuItemName, l.MenuItemNameEn,
			l.Quantity, l.UnitPrice.Halalas, l.Revenue().Halalas)
		if err != nil {
			return core.Order{}, fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Order{}, fmt.Errorf("commit order tx: %w", err)
	}

	slog.InfoContext(ctx, "Order created",
		"id", o.ID,
		"order_number", o.OrderNumber,
		"total_halalas", o.TotalAmount.Halalas,
		"lines", len(o.Lines))
	return o, nil
}

// ListOrders returns orders in the [from, to] window, newest first. A
// zero from or to leaves that side of the window open. The limit is
// clamped to MaxOrderListLimit; zero means the maximum.
func (r *SQLiteRepository) ListOrders(ctx context.Context, from, to time.Time, limit int) ([]core.Order, error) {
	if limit <= 0 || limit > MaxOrderListLimit {
		limit = MaxOrderListLimit
	}

	q := `SELECT id, order_number, total_halalas, discount_halalas, tips_halalas,
		customer_name, customer_phone, customer_address, table_number,
		status, order_date, source, notes
		FROM orders`
	var args []any
	var where []string
	if !from.IsZero() {
		where = append(where, "order_date >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, "order_date <= ?")
		args = append(args, to.UTC())
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY order_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []core.Order
	index := make(map[string]int)
	for rows.Next() {
		var o core.Order
		err := rows.Scan(&o.ID, &o.OrderNumber, &o.TotalAmount.Halalas,
			&o.DiscountAmount.Halalas, &o.Tips.Halalas,
			&o.CustomerInfo.Name, &o.CustomerInfo.Phone,
			&o.CustomerInfo.Address, &o.CustomerInfo.TableNumber,
			&o.Status, &o.OrderDate, &o.Source, &o.Notes)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.OrderDate = o.OrderDate.Local()
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	if err := r.attachLines(ctx, orders, index); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *SQLiteRepository) attachLines(ctx context.Context, orders []core.Order, index map[string]int) error {
	ids := make([]any, len(orders))
	placeholders := ""
	for i, o := range orders {
		ids[i] = o.ID
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
	}

	rows, err := r.db.QueryContext(ctx, `SELECT order_id, menu_item_id,
		menu_item_name, menu_item_name_en, quantity,
		unit_price_halalas, total_price_halalas
		FROM order_lines WHERE order_id IN (`+placeholders+`) ORDER BY id`, ids...)
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var l core.OrderLine
		err := rows.Scan(&orderID, &l.MenuItemID, &l.MenuItemName,
			&l.MenuItemNameEn, &l.Quantity,
			&l.UnitPrice.Halalas, &l.TotalPrice.Halalas)
		if err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

// GetOrder retrieves a single order with its lines.
func (r *SQLiteRepository) GetOrder(ctx context.Context, id string) (core.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, order_number, total_halalas,
		discount_halalas, tips_halalas, customer_name, customer_phone,
		customer_address, table_number, status, order_date, source, notes
		FROM orders WHERE id = ?`, id)

	var o core.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.TotalAmount.Halalas,
		&o.DiscountAmount.Halalas, &o.Tips.Halalas,
		&o.CustomerInfo.Name, &o.CustomerInfo.Phone,
		&o.CustomerInfo.Address, &o.CustomerInfo.TableNumber,
		&o.Status, &o.OrderDate, &o.Source, &o.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Order{}, ErrNotFound
	}
	if err != nil {
		return core.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.OrderDate = o.OrderDate.Local()

	orders := []core.Order{o}
	if err := r.attachLines(ctx, orders, map[string]int{o.ID: 0}); err != nil {
		return core.Order{}, err
	}
	return orders[0], nil
}

// --- analytics lookup indexes ---

// ItemIndex loads the per-item lookup the analytics engine side-loads.
func (r *SQLiteRepository) ItemIndex(ctx context.Context) (map[string]core.ItemInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, category_id, cost_halalas FROM menu_items")
	if err != nil {
		return nil, fmt.Errorf("load item index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]core.ItemInfo)
	for rows.Next() {
		var id string
		var info core.ItemInfo
		if err := rows.Scan(&id, &info.CategoryID, &info.Cost.Halalas); err != nil {
			return nil, fmt.Errorf("scan item index: %w", err)
		}
		index[id] = info
	}
	return index, rows.Err()
}

// CategoryIndex loads the category name lookup for analytics labels.
func (r *SQLiteRepository) CategoryIndex(ctx context.Context) (map[string]core.CategoryInfo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories")
	if err != nil {
		return nil, fmt.Errorf("load category index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]core.CategoryInfo)
	for rows.Next() {
		var id string
		var info core.CategoryInfo
		if err := rows.Scan(&id, &info.Name); err != nil {
			return nil, fmt.Errorf("scan category index: %w", err)
		}
		index[id] = info
	}
	return index, rows.Err()
}

// --- export queue ---

// ListUnexportedOrders returns orders not yet written to the ledger,
// oldest first so the worker drains in arrival order.
func (r *SQLiteRepository) ListUnexportedOrders(ctx context.Context, limit int) ([]core.Order, error) {
	if limit <= 0 || limit > MaxOrderListLimit {
		limit = MaxOrderListLimit
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM orders
		WHERE exported_at IS NULL ORDER BY order_date LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unexported id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]core.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// MarkOrderExported stamps the order as written to the ledger.
func (r *SQLiteRepository) MarkOrderExported(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET exported_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark order exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Order marked as exported", "id", id)
	return nil
}

// CountUnexportedOrders reports the export backlog size.
func (r *SQLiteRepository) CountUnexportedOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE exported_at IS NULL").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unexported orders: %w", err)
	}
	return n, nil
}
