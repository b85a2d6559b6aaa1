package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sotsvc/service-estimate/internal/domain"
	testimonialDomain "github.com/sotsvc/service-estimate/internal/domain/testimonial"
)

// TestimonialModel is the GORM model for the testimonials table.
type TestimonialModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null;size:100"`
	JobTitle   string    `gorm:"size:100"`
	Rating     int       `gorm:"not null"`
	Comment    string    `gorm:"not null;size:2000"`
	IsApproved bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TestimonialModel) TableName() string {
	return "testimonials"
}

// GormTestimonialRepository is the GORM-based implementation of the
// testimonial Repository.
type GormTestimonialRepository struct {
	db *gorm.DB
}

// NewGormTestimonialRepository creates a new GormTestimonialRepository.
func NewGormTestimonialRepository(db *gorm.DB) *GormTestimonialRepository {
	return &GormTestimonialRepository{db: db}
}

// ListApproved retrieves one page of approved testimonials, newest first.
func (r *GormTestimonialRepository) ListApproved(ctx context.Context, page, limit int) ([]*testimonialDomain.Testimonial, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&TestimonialModel{}).
		Where("is_approved = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count approved testimonials: %w", err)
	}

	var models []TestimonialModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list approved testimonials: %w", err)
	}
	return toDomainTestimonials(models), total, nil
}

// ListByUser retrieves a user's own testimonials, newest first.
func (r *GormTestimonialRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*testimonialDomain.Testimonial, error) {
	var models []TestimonialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list user testimonials: %w", err)
	}
	return toDomainTestimonials(models), nil
}

// Save persists a new testimonial.
func (r *GormTestimonialRepository) Save(ctx context.Context, t *testimonialDomain.Testimonial) error {
	model := toTestimonialModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save testimonial: %w", err)
	}
	return nil
}

// Approve marks a testimonial publicly visible.
func (r *GormTestimonialRepository) Approve(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&TestimonialModel{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if result.Error != nil {
		return fmt.Errorf("failed to approve testimonial: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Testimonial", id.String())
	}
	return nil
}

// Delete removes a testimonial if it belongs to the user. Ownership is
// enforced in the query so a forged ID cannot delete someone else's review.
func (r *GormTestimonialRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&TestimonialModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete testimonial: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Testimonial", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toTestimonialModel(t *testimonialDomain.Testimonial) *TestimonialModel {
	return &TestimonialModel{
		ID:         t.ID(),
		UserID:     t.UserID(),
		Name:       t.Name(),
		JobTitle:   t.JobTitle(),
		Rating:     t.Rating(),
		Comment:    t.Comment(),
		IsApproved: t.IsApproved(),
		CreatedAt:  t.CreatedAt(),
	}
}

func toDomainTestimonials(models []TestimonialModel) []*testimonialDomain.Testimonial {
	out := make([]*testimonialDomain.Testimonial, len(models))
	for i, m := range models {
		out[i] = testimonialDomain.ReconstructTestimonial(
			m.ID, m.UserID, m.Name, m.JobTitle, m.Rating, m.Comment, m.IsApproved, m.CreatedAt,
		)
	}
	return out
}
