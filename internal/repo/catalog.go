package repo

import (
	"context"
	"fmt"
)

const categoryColumns = `id, name, description, image_url, display_order, created_at, updated_at`

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns categories in display order.
func (q *queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.query(ctx, `SELECT `+categoryColumns+` FROM product_categories ORDER BY display_order ASC, name ASC`)
	if err != nil {
		return nil, classify("list categories", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// GetCategory loads a category by id.
func (q *queries) GetCategory(ctx context.Context, id string) (*Category, error) {
	c, err := scanCategory(q.db.queryRow(ctx, `SELECT `+categoryColumns+` FROM product_categories WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get category", err)
	}
	return &c, nil
}

// CreateCategory inserts a category.
func (q *queries) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO product_categories (id, name, description, image_url, display_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Description, in.ImageURL, in.DisplayOrder, ts, ts)
	if err != nil {
		return nil, classify("create category", err)
	}
	return q.GetCategory(ctx, id)
}

// UpdateCategory overwrites a category's editable fields.
func (q *queries) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	n, err := q.db.exec(ctx, `
UPDATE product_categories
SET name = ?, description = ?, image_url = ?, display_order = ?, updated_at = ?
WHERE id = ?`,
		in.Name, in.Description, in.ImageURL, in.DisplayOrder, now(), id)
	if err != nil {
		return nil, classify("update category", err)
	}
	if err := notFoundIfNone("update category", n); err != nil {
		return nil, err
	}
	return q.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Products keep existing without one.
func (q *queries) DeleteCategory(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM product_categories WHERE id = ?`, id)
	if err != nil {
		return classify("delete category", err)
	}
	return notFoundIfNone("delete category", n)
}

const productSelect = `
SELECT p.id, p.name, p.description, p.category_id, COALESCE(c.name, ''), p.features, p.images,
       p.youtube_url, p.pdf_url, p.whatsapp_message, p.is_featured, p.display_order, p.created_at, p.updated_at
FROM products p
LEFT JOIN product_categories c ON c.id = p.category_id`

func scanProduct(row rowScanner) (Product, error) {
	var (
		p        Product
		features stringList
		images   stringList
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName, &features, &images,
		&p.YoutubeURL, &p.PDFURL, &p.WhatsAppMessage, &p.IsFeatured, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	p.Features = features
	p.Images = images
	return p, err
}

// ListProducts returns products in display order, newest first within a slot.
func (q *queries) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	stmt := productSelect + ` WHERE 1 = 1`
	var args []any
	if filter.CategoryID != "" {
		stmt += ` AND p.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.FeaturedOnly {
		stmt += ` AND p.is_featured = ?`
		args = append(args, true)
	}
	stmt += ` ORDER BY p.display_order ASC, p.created_at DESC`
	stmt, args = limitClause(stmt, args, filter.Limit)

	rows, err := q.db.query(ctx, stmt, args...)
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// GetProduct loads a product with its category name.
func (q *queries) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(q.db.queryRow(ctx, productSelect+` WHERE p.id = ?`, id))
	if err != nil {
		return nil, classify("get product", err)
	}
	return &p, nil
}

// CreateProduct inserts a product.
func (q *queries) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO products (id, name, description, category_id, features, images, youtube_url, pdf_url,
                      whatsapp_message, is_featured, display_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Description, in.CategoryID, stringList(in.Features), stringList(in.Images),
		in.YoutubeURL, in.PDFURL, in.WhatsAppMessage, in.IsFeatured, in.DisplayOrder, ts, ts)
	if err != nil {
		return nil, classify("create product", err)
	}
	return q.GetProduct(ctx, id)
}

// UpdateProduct overwrites a product's editable fields.
func (q *queries) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	n, err := q.db.exec(ctx, `
UPDATE products
SET name = ?, description = ?, category_id = ?, features = ?, images = ?, youtube_url = ?, pdf_url = ?,
    whatsapp_message = ?, is_featured = ?, display_order = ?, updated_at = ?
WHERE id = ?`,
		in.Name, in.Description, in.CategoryID, stringList(in.Features), stringList(in.Images),
		in.YoutubeURL, in.PDFURL, in.WhatsAppMessage, in.IsFeatured, in.DisplayOrder, now(), id)
	if err != nil {
		return nil, classify("update product", err)
	}
	if err := notFoundIfNone("update product", n); err != nil {
		return nil, err
	}
	return q.GetProduct(ctx, id)
}

// DeleteProduct removes a product.
func (q *queries) DeleteProduct(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return classify("delete product", err)
	}
	return notFoundIfNone("delete product", n)
}
