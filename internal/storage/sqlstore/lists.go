package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

// CreateList persists a new list together with any initial members and items.
func (s *Store) CreateList(ctx context.Context, list *models.ShoppingList) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q("INSERT INTO shopping_lists (id, name, owner_user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"),
			list.ID, list.Name, list.OwnerUserID, list.CreatedAt.Unix(), list.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert shopping list: %w", err)
		}

		for _, userID := range list.Members {
			_, err = tx.ExecContext(ctx,
				s.q("INSERT INTO list_members (list_id, user_id, added_at) VALUES (?, ?, ?)"),
				list.ID, userID, time.Now().UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert member: %w", err)
			}
		}

		for _, item := range list.Items {
			_, err = tx.ExecContext(ctx,
				s.q("INSERT INTO list_items (list_id, item_id, name, status, position) VALUES (?, ?, ?, ?, ?)"),
				list.ID, item.ID, item.Name, string(item.Status), time.Now().UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
		}
		return nil
	})
}

// GetList retrieves a list by ID, including members and items.
func (s *Store) GetList(ctx context.Context, id string) (*models.ShoppingList, error) {
	list := &models.ShoppingList{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id, name, owner_user_id, created_at, updated_at FROM shopping_lists WHERE id = ?"),
		id,
	).Scan(&list.ID, &list.Name, &list.OwnerUserID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	list.CreatedAt = time.Unix(createdAt, 0).UTC()
	list.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := s.loadChildren(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAll pages over every list ordered by creation time.
func (s *Store) ListAll(ctx context.Context, page storage.Page) ([]*models.ShoppingList, error) {
	return s.queryLists(ctx, `
		SELECT id, name, owner_user_id, created_at, updated_at
		FROM shopping_lists
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`,
		page.Limit, page.Skip,
	)
}

// ListForUser pages over lists the user owns or is a member of.
func (s *Store) ListForUser(ctx context.Context, userID string, page storage.Page) ([]*models.ShoppingList, error) {
	return s.queryLists(ctx, `
		SELECT l.id, l.name, l.owner_user_id, l.created_at, l.updated_at
		FROM shopping_lists l
		WHERE l.owner_user_id = ?
		   OR EXISTS (SELECT 1 FROM list_members m WHERE m.list_id = l.id AND m.user_id = ?)
		ORDER BY l.created_at, l.id
		LIMIT ? OFFSET ?`,
		userID, userID, page.Limit, page.Skip,
	)
}

// DeleteList removes a list and everything attached to it.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM list_items WHERE list_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM list_members WHERE list_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q("DELETE FROM shopping_lists WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("failed to delete shopping list: %w", err)
		}
		return expectRows(res, storage.ErrListNotFound)
	})
}

// AddMember inserts the member only while the list exists; duplicates are ignored.
func (s *Store) AddMember(ctx context.Context, listID, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO list_members (list_id, user_id, added_at)
			SELECT id, CAST(? AS TEXT), CAST(? AS BIGINT) FROM shopping_lists WHERE id = ?
			ON CONFLICT DO NOTHING`),
			userID, time.Now().UnixNano(), listID,
		)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		if n == 0 {
			// Either already a member or the list is gone.
			return s.listExists(ctx, tx, listID)
		}
		return s.touch(ctx, tx, listID)
	})
}

// RemoveMember deletes the membership row if present.
func (s *Store) RemoveMember(ctx context.Context, listID, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q("DELETE FROM list_members WHERE list_id = ? AND user_id = ?"),
			listID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if err := expectRows(res, storage.ErrMemberNotFound); err != nil {
			return err
		}
		return s.touch(ctx, tx, listID)
	})
}

// AddItem appends an item while the list exists.
func (s *Store) AddItem(ctx context.Context, listID string, item models.Item) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO list_items (list_id, item_id, name, status, position)
			SELECT id, CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS BIGINT)
			FROM shopping_lists WHERE id = ?`),
			item.ID, item.Name, string(item.Status), time.Now().UnixNano(), listID,
		)
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
		if err := expectRows(res, storage.ErrListNotFound); err != nil {
			return err
		}
		return s.touch(ctx, tx, listID)
	})
}

// RemoveItem deletes an item from the list.
func (s *Store) RemoveItem(ctx context.Context, listID, itemID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q("DELETE FROM list_items WHERE list_id = ? AND item_id = ?"),
			listID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}
		if err := expectRows(res, storage.ErrItemNotFound); err != nil {
			return err
		}
		return s.touch(ctx, tx, listID)
	})
}

// UpdateItemStatus sets the status of an item in the list.
// Setting the current status again still counts as a match.
func (s *Store) UpdateItemStatus(ctx context.Context, listID, itemID string, status models.ItemStatus) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q("UPDATE list_items SET status = ? WHERE list_id = ? AND item_id = ?"),
			string(status), listID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item status: %w", err)
		}
		if err := expectRows(res, storage.ErrItemNotFound); err != nil {
			return err
		}
		return s.touch(ctx, tx, listID)
	})
}

func (s *Store) queryLists(ctx context.Context, query string, args ...any) ([]*models.ShoppingList, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	defer rows.Close()

	lists := []*models.ShoppingList{}
	for rows.Next() {
		list := &models.ShoppingList{}
		var createdAt, updatedAt int64
		if err := rows.Scan(&list.ID, &list.Name, &list.OwnerUserID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		list.CreatedAt = time.Unix(createdAt, 0).UTC()
		list.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}
	rows.Close()

	for _, list := range lists {
		if err := s.loadChildren(ctx, list); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// loadChildren fills in members and items.
func (s *Store) loadChildren(ctx context.Context, list *models.ShoppingList) error {
	list.Members = []string{}
	list.Items = []models.Item{}

	rows, err := s.db.QueryContext(ctx,
		s.q("SELECT user_id FROM list_members WHERE list_id = ? ORDER BY added_at, user_id"),
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		list.Members = append(list.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		s.q("SELECT item_id, name, status FROM list_items WHERE list_id = ? ORDER BY position, item_id"),
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		var status string
		if err := itemRows.Scan(&item.ID, &item.Name, &status); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.Status = models.ItemStatus(status)
		list.Items = append(list.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	return nil
}

func (s *Store) listExists(ctx context.Context, tx *sql.Tx, listID string) error {
	var one int
	err := tx.QueryRowContext(ctx, s.q("SELECT 1 FROM shopping_lists WHERE id = ?"), listID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrListNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check shopping list: %w", err)
	}
	return nil
}

func (s *Store) touch(ctx context.Context, tx *sql.Tx, listID string) error {
	_, err := tx.ExecContext(ctx,
		s.q("UPDATE shopping_lists SET updated_at = ? WHERE id = ?"),
		time.Now().Unix(), listID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch shopping list: %w", err)
	}
	return nil
}

// expectRows returns miss when the statement matched no rows.
func expectRows(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return miss
	}
	return nil
}
