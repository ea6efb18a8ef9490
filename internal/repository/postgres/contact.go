package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository"
)

const contactColumns = `id, elderly_profile_id, full_name, relationship, email, phone, alert_methods, is_primary, created_at`

type contactRepository struct {
	BaseRepository
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{NewBaseRepository(db)}
}

// Create inserts the contact. A new primary contact demotes the others in the same transaction.
func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if c.IsPrimary {
			if err := clearPrimary(ctx, tx, c.ElderlyProfileID, c.ID); err != nil {
				return err
			}
		}
		query := `
			INSERT INTO contacts (
				id, elderly_profile_id, full_name, relationship, email, phone, alert_methods, is_primary, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7::alert_method[], $8, $9)
		`
		_, err := tx.ExecContext(ctx, query,
			c.ID,
			c.ElderlyProfileID,
			c.FullName,
			c.Relationship,
			c.Email,
			c.Phone,
			c.AlertMethods,
			c.IsPrimary,
			c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}
		return nil
	})
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	var c model.Contact
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, notFound("contact", err)
	}
	return &c, nil
}

func (r *contactRepository) Update(ctx context.Context, c *model.Contact) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if c.IsPrimary {
			if err := clearPrimary(ctx, tx, c.ElderlyProfileID, c.ID); err != nil {
				return err
			}
		}
		query := `
			UPDATE contacts
			SET full_name = $1, relationship = $2, email = $3, phone = $4,
				alert_methods = $5::alert_method[], is_primary = $6
			WHERE id = $7
		`
		res, err := tx.ExecContext(ctx, query,
			c.FullName,
			c.Relationship,
			c.Email,
			c.Phone,
			c.AlertMethods,
			c.IsPrimary,
			c.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update contact: %w", err)
		}
		return expectOneRow("contact", res)
	})
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return expectOneRow("contact", res)
}

func (r *contactRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE elderly_profile_id = $1 ORDER BY is_primary DESC, created_at ASC`
	contacts := []*model.Contact{}
	if err := r.db.SelectContext(ctx, &contacts, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func clearPrimary(ctx context.Context, tx *sqlx.Tx, profileID, keepID uuid.UUID) error {
	query := `UPDATE contacts SET is_primary = FALSE WHERE elderly_profile_id = $1 AND id <> $2 AND is_primary`
	if _, err := tx.ExecContext(ctx, query, profileID, keepID); err != nil {
		return fmt.Errorf("failed to clear primary contact: %w", err)
	}
	return nil
}
