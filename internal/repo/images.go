package repo

import (
	"context"
	"fmt"
)

// DeleteImage removes a stored image.
func (q *queries) DeleteImage(ctx context.Context, key string) error {
	n, err := q.db.exec(ctx, `DELETE FROM images WHERE object_key = ?`, key)
	if err != nil {
		return classify("delete image", err)
	}
	return notFoundIfNone("delete image", n)
}

// PutImage stores an uploaded image blob.
func (q *queries) PutImage(ctx context.Context, obj ImageObject) error {
	if obj.Key == "" {
		return fmt.Errorf("put image: empty key")
	}
	created := obj.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err := q.db.exec(ctx, `
INSERT INTO images (object_key, folder, content_type, size, data, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		obj.Key, obj.Folder, obj.ContentType, obj.Size, obj.Data, created)
	if err != nil {
		return classify("put image", err)
	}
	return nil
}

// GetImage loads a stored image blob.
func (q *queries) GetImage(ctx context.Context, key string) (*ImageObject, error) {
	var obj ImageObject
	err := q.db.queryRow(ctx, `SELECT object_key, folder, content_type, size, data, created_at FROM images WHERE object_key = ?`, key).
		Scan(&obj.Key, &obj.Folder, &obj.ContentType, &obj.Size, &obj.Data, &obj.CreatedAt)
	if err != nil {
		return nil, classify("get image", err)
	}
	return &obj, nil
}
