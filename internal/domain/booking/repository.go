package booking

import "context"

// DraftRepository is the session-durable store for booking drafts. One draft
// per session: it survives the calculator -> checkout page boundary and is
// deleted on successful payment or explicit abandonment.
type DraftRepository interface {
	// FindBySession retrieves the draft owned by a session.
	FindBySession(ctx context.Context, sessionID string) (*Draft, error)

	// Save persists a new draft.
	Save(ctx context.Context, draft *Draft) error

	// Update persists changes to an existing draft with optimistic locking.
	Update(ctx context.Context, draft *Draft) error

	// Delete removes a session's draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, sessionID string) error
}
