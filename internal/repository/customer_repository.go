package repository

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Customer implements store.Store.  Accounts and sign-up live in another
// service; this read only feeds the contact snapshot taken at booking.
func (s *Store) Customer(ctx context.Context, id uint64) (model.Customer, error) {
	var c model.Customer
	err := s.db.QueryRowContext(ctx,
		"SELECT id,name,email,phone,created_at FROM customers WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		return model.Customer{}, classify(err)
	}
	return c, nil
}
