package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/domain"
	testimonialDomain "github.com/sotsvc/service-estimate/internal/domain/testimonial"
	"github.com/sotsvc/service-estimate/internal/retry"
)

// SubmitTestimonialRequest holds a new testimonial submission.
type SubmitTestimonialRequest struct {
	Name     string `json:"name" binding:"required"`
	JobTitle string `json:"job_title"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
}

// TestimonialDTO is the response representation of a testimonial.
type TestimonialDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	JobTitle   string    `json:"job_title,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// TestimonialService manages customer reviews. Reads go through a bounded
// retry because the public site renders them on every page load and a
// transient store hiccup should not blank the section.
type TestimonialService struct {
	repo   testimonialDomain.Repository
	retry  retry.Policy
	logger *zap.Logger
}

// NewTestimonialService creates a new TestimonialService.
func NewTestimonialService(repo testimonialDomain.Repository, policy retry.Policy, logger *zap.Logger) *TestimonialService {
	return &TestimonialService{
		repo:   repo,
		retry:  policy,
		logger: logger,
	}
}

// ListApproved retrieves one page of publicly visible testimonials.
func (s *TestimonialService) ListApproved(ctx context.Context, page, limit int) (*domain.PaginatedResult[TestimonialDTO], error) {
	var items []*testimonialDomain.Testimonial
	var total int64
	err := s.retry.Do(ctx, func() error {
		var innerErr error
		items, total, innerErr = s.repo.ListApproved(ctx, page, limit)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toTestimonialDTOs(items), total, page, limit)
	return &result, nil
}

// ListMine retrieves the caller's own testimonials, approved or not.
func (s *TestimonialService) ListMine(ctx context.Context, userID uuid.UUID) ([]TestimonialDTO, error) {
	var items []*testimonialDomain.Testimonial
	err := s.retry.Do(ctx, func() error {
		var innerErr error
		items, innerErr = s.repo.ListByUser(ctx, userID)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return toTestimonialDTOs(items), nil
}

// Submit stores a new pending-approval testimonial for the caller.
func (s *TestimonialService) Submit(ctx context.Context, userID uuid.UUID, req SubmitTestimonialRequest) (*TestimonialDTO, error) {
	t, err := testimonialDomain.NewTestimonial(userID, req.Name, req.JobTitle, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("testimonial submitted",
		zap.String("testimonial_id", t.ID().String()),
		zap.Int("rating", t.Rating()),
	)

	dto := toTestimonialDTO(t)
	return &dto, nil
}

// Approve marks a testimonial publicly visible. Moderation only.
func (s *TestimonialService) Approve(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Approve(ctx, id); err != nil {
		return err
	}
	s.logger.Info("testimonial approved", zap.String("testimonial_id", id.String()))
	return nil
}

// Delete removes the caller's own testimonial.
func (s *TestimonialService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

// --- Helpers ---

func toTestimonialDTO(t *testimonialDomain.Testimonial) TestimonialDTO {
	return TestimonialDTO{
		ID:         t.ID(),
		Name:       t.Name(),
		JobTitle:   t.JobTitle(),
		Rating:     t.Rating(),
		Comment:    t.Comment(),
		IsApproved: t.IsApproved(),
		CreatedAt:  t.CreatedAt(),
	}
}

func toTestimonialDTOs(items []*testimonialDomain.Testimonial) []TestimonialDTO {
	dtos := make([]TestimonialDTO, len(items))
	for i, t := range items {
		dtos[i] = toTestimonialDTO(t)
	}
	return dtos
}
