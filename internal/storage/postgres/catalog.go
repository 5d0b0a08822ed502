package postgres

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const productColumns = `id, name, category, unit, price, sale_price, stock, state, created_at, updated_at`

type productRepository struct {
	db querier
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Price, &p.SalePrice, &p.Stock, &p.State, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	const query = `INSERT INTO products (name, category, unit, price, sale_price, stock, state)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, created_at, updated_at`
	if p.State == "" {
		p.State = model.LifecycleActive
	}
	err := r.db.QueryRow(ctx, query, p.Name, p.Category, p.Unit, p.Price, p.SalePrice, p.Stock, p.State).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// List returns active products only. A zero limit means no limit.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
                   WHERE state = 'active'
                     AND ($1 = '' OR category = $1)
                     AND ($2 = '' OR name ILIKE '%' || $2 || '%')
                   ORDER BY id
                   LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.db.Query(ctx, query, filter.Category, filter.Query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) SetState(ctx context.Context, id int64, state model.Lifecycle) error {
	return expectOne(r.db.Exec(ctx, `UPDATE products SET state=$1, updated_at=NOW() WHERE id=$2`, state, id))
}

type cartRepository struct {
	db querier
}

func (r *cartRepository) Items(ctx context.Context, userID int64) ([]model.CartLine, error) {
	return cartItems(ctx, r.db, `SELECT product_id, quantity FROM cart_items WHERE user_id=$1 ORDER BY product_id`, userID)
}

func (r *cartRepository) Put(ctx context.Context, userID int64, line model.CartLine) error {
	const query = `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
                   ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, userID, line.ProductID, line.Quantity)
	return mapError(err)
}

func (r *cartRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

func cartItems(ctx context.Context, db querier, query string, userID int64) ([]model.CartLine, error) {
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

const addressColumns = `id, user_id, label, full_name, phone, line1, line2, city, state, postal_code, created_at`

type addressRepository struct {
	db querier
}

func scanAddress(row scanner) (*model.Address, error) {
	var a model.Address
	if err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	const query = `INSERT INTO addresses (user_id, label, full_name, phone, line1, line2, city, state, postal_code)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, a.UserID, a.Label, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode).
		Scan(&a.ID, &a.CreatedAt)
	return mapError(err)
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	rows, err := r.db.Query(ctx, `SELECT `+addressColumns+` FROM addresses WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the address only when userID owns it.
func (r *addressRepository) Get(ctx context.Context, userID, id int64) (*model.Address, error) {
	a, err := scanAddress(r.db.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id=$1 AND user_id=$2`, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}
