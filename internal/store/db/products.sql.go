package db

import (
	"context"
)

const listAll = `SELECT id, name, price FROM products ORDER BY id`

// ListAll reads every row. The slice is never nil.
func (q *Queries) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(&i.ID, &i.Name, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const create = `INSERT INTO products (name, price) VALUES (?, ?) RETURNING id, name, price`

type CreateParams struct {
	Name  string
	Price float64
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, create, arg.Name, arg.Price)
	var i Product
	err := row.Scan(&i.ID, &i.Name, &i.Price)
	return i, err
}

const update = `UPDATE products SET name = ?, price = ? WHERE id = ?`

type UpdateParams struct {
	ID    int64
	Name  string
	Price float64
}

// Update returns the number of rows changed, 0 when the id does not exist.
func (q *Queries) Update(ctx context.Context, arg UpdateParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, update, arg.Name, arg.Price, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteByID = `DELETE FROM products WHERE id = ?`

// Delete returns the number of rows removed, 0 when the id does not exist.
func (q *Queries) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
