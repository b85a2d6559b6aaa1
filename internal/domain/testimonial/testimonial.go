package testimonial

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sotsvc/service-estimate/internal/domain"
)

// Testimonial is a customer review. New submissions start unapproved and only
// appear publicly once moderation flips is_approved.
type Testimonial struct {
	id         uuid.UUID
	userID     uuid.UUID
	name       string
	jobTitle   string
	rating     int
	comment    string
	isApproved bool
	createdAt  time.Time
}

// NewTestimonial creates a pending-approval testimonial for a user.
func NewTestimonial(userID uuid.UUID, name, jobTitle string, rating int, comment string) (*Testimonial, error) {
	if userID == uuid.Nil {
		return nil, domain.NewUnauthorizedError("you must be signed in to submit a testimonial")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return nil, domain.NewValidationError("comment is required")
	}

	return &Testimonial{
		id:        uuid.New(),
		userID:    userID,
		name:      strings.TrimSpace(name),
		jobTitle:  strings.TrimSpace(jobTitle),
		rating:    rating,
		comment:   strings.TrimSpace(comment),
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructTestimonial rebuilds a Testimonial from persistence data (no validation).
func ReconstructTestimonial(id, userID uuid.UUID, name, jobTitle string, rating int, comment string, isApproved bool, createdAt time.Time) *Testimonial {
	return &Testimonial{
		id:         id,
		userID:     userID,
		name:       name,
		jobTitle:   jobTitle,
		rating:     rating,
		comment:    comment,
		isApproved: isApproved,
		createdAt:  createdAt,
	}
}

// ID returns the testimonial's unique identifier.
func (t *Testimonial) ID() uuid.UUID { return t.id }

// UserID returns the author's user ID.
func (t *Testimonial) UserID() uuid.UUID { return t.userID }

// Name returns the display name.
func (t *Testimonial) Name() string { return t.name }

// JobTitle returns the optional job title.
func (t *Testimonial) JobTitle() string { return t.jobTitle }

// Rating returns the 1-5 star rating.
func (t *Testimonial) Rating() int { return t.rating }

// Comment returns the review text.
func (t *Testimonial) Comment() string { return t.comment }

// IsApproved returns true once moderation has approved the testimonial.
func (t *Testimonial) IsApproved() bool { return t.isApproved }

// CreatedAt returns the creation timestamp.
func (t *Testimonial) CreatedAt() time.Time { return t.createdAt }

// Approve marks the testimonial as publicly visible.
func (t *Testimonial) Approve() { t.isApproved = true }
