package testimonial

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for testimonials.
type Repository interface {
	// ListApproved retrieves one page of approved testimonials, newest
	// first, along with the total approved count.
	ListApproved(ctx context.Context, page, limit int) ([]*Testimonial, int64, error)

	// ListByUser retrieves a user's own testimonials, newest first,
	// regardless of approval.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Testimonial, error)

	// Save persists a new testimonial.
	Save(ctx context.Context, t *Testimonial) error

	// Approve marks a testimonial publicly visible.
	Approve(ctx context.Context, id uuid.UUID) error

	// Delete removes a testimonial if it belongs to the user.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
