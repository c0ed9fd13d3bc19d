package family

import "context"

// Store is the persistence boundary for the family graph. The service layer
// consumes this interface; implementations live in pkg/store (in-memory for
// tests and development, MongoDB for production).
//
// Every call is its own atomic unit at the store level - no multi-step
// client-side transaction spans multiple calls. Implementations return
// errors.ErrCodeNotFound for missing ids and errors.ErrCodeValidation for
// missing required fields (see pkg/errors).
type Store interface {
	// GetAll returns a full snapshot of persons, couples, and edges.
	GetAll(ctx context.Context) (*Graph, error)

	CreatePerson(ctx context.Context, p Person) (Person, error)
	GetPerson(ctx context.Context, id string) (Person, error)
	UpdatePerson(ctx context.Context, id string, upd PersonUpdate) (Person, error)
	DeletePerson(ctx context.Context, id string) error

	CreateCouple(ctx context.Context, c Couple) (Couple, error)
	GetCouple(ctx context.Context, id string) (Couple, error)
	DeleteCouple(ctx context.Context, id string) error

	CreateEdge(ctx context.Context, personID, coupleID string, kind EdgeKind) error
	DeleteEdge(ctx context.Context, personID, coupleID string, kind EdgeKind) error
	// FindEdgesForPerson lists the couples a person belongs to, by role.
	FindEdgesForPerson(ctx context.Context, personID string) (Membership, error)

	CreatePhoto(ctx context.Context, ph Photo) (Photo, error)
	ListPhotos(ctx context.Context) ([]Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	// CreateTags records the appears-in edges for a photo in one batch call.
	CreateTags(ctx context.Context, photoID string, personIDs []string) error
	DeleteTagsForPerson(ctx context.Context, personID string) error
	CountTagsForPerson(ctx context.Context, personID string) (int, error)

	Close(ctx context.Context) error
}
