package repository

import (
	"context"
	"database/sql"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// ProductRepo provides read access to the ticket catalog.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `product_id, name, kind, price, value, is_visible`

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var kind string
	err := row.Scan(&p.ID, &p.Name, &kind, &p.Price, &p.Value, &p.Visible)
	if err != nil {
		return model.Product{}, err
	}
	p.Kind = model.ProductKind(kind)
	return p, nil
}

// GetByID fetches a product by primary key.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE product_id = ?`, id)
	return scanProduct(row)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE product_id = ?`, id)
	return scanProduct(row)
}

// ListVisible returns the visible products of one kind, ordered by
// price.  The kiosk only sells time tickets; the web shop lists both.
func (r *ProductRepo) ListVisible(ctx context.Context, kinds ...model.ProductKind) ([]model.Product, error) {
	query := `SELECT ` + productCols + ` FROM products WHERE is_visible = 1`
	args := make([]interface{}, 0, len(kinds))
	if len(kinds) > 0 {
		query += ` AND kind IN (`
		for i, k := range kinds {
			if i > 0 {
				query += `,`
			}
			query += `?`
			args = append(args, string(k))
		}
		query += `)`
	}
	query += ` ORDER BY price`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
