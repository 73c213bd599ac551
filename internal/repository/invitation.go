package repository

import (
	"context"
	"fmt"
	"time"

	"dateflix-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invitationColumns = `i.id, i.sender_id, i.recipient_email, i.recipient_id, i.invite_code,
	i.status, i.expires_at, i.accepted_at, i.created_at`

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	db *pgxpool.Pool
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, sender_id, recipient_email, invite_code, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.SenderID, inv.RecipientEmail, inv.InviteCode, inv.Status, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetPendingByCode retrieves the pending invitation with the given code
func (r *InvitationRepository) GetPendingByCode(ctx context.Context, code string) (*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		WHERE i.invite_code = $1 AND i.status = 'pending'
		ORDER BY i.created_at DESC
		LIMIT 1
	`
	inv, err := scanInvitation(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation by code: %w", err)
	}
	return inv, nil
}

// MarkExpired moves a pending invitation to expired
func (r *InvitationRepository) MarkExpired(ctx context.Context, id string) error {
	query := `UPDATE invitations SET status = 'expired' WHERE id = $1 AND status = 'pending'`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to expire invitation: %w", err)
	}
	return nil
}

// MarkAccepted moves a pending invitation to accepted. It reports false when the
// invitation was no longer pending, which is how concurrent accepts are serialized.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id, recipientID string, at time.Time) (bool, error) {
	query := `
		UPDATE invitations
		SET status = 'accepted', recipient_id = $2, accepted_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	// The status guard plus RowsAffected is what makes a second accept lose.
	// Do not split this into a read followed by an unconditional update.
	result, err := r.db.Exec(ctx, query, id, recipientID, at)
	if err != nil {
		return false, fmt.Errorf("failed to accept invitation: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// ListByUser retrieves invitations sent or accepted by the user with the sender profile
func (r *InvitationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `, ` + prefixedUserColumns("u") + `
		FROM invitations i
		JOIN users u ON u.id = i.sender_id
		WHERE i.sender_id = $1 OR i.recipient_id = $1
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []*models.Invitation{}
	for rows.Next() {
		inv := &models.Invitation{Sender: &models.User{}}
		dest := append(invitationFields(inv), userFields(inv.Sender)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}
	return invitations, nil
}

func invitationFields(inv *models.Invitation) []any {
	return []any{
		&inv.ID, &inv.SenderID, &inv.RecipientEmail, &inv.RecipientID, &inv.InviteCode,
		&inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	}
}

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	if err := row.Scan(invitationFields(&inv)...); err != nil {
		return nil, err
	}
	return &inv, nil
}
