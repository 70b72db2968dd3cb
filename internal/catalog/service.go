package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/client"
)

// Errors returned before any request is made.
var (
	// ErrMissingID is returned when an operation needs an entity id.
	ErrMissingID = errors.New("catalog: id is required")
	// ErrMissingOwner is returned when the owning entity id, which selects
	// the route or is required in the body, is empty.
	ErrMissingOwner = errors.New("catalog: owner id is required")
)

// APIClient is the subset of *client.Client the services use.
type APIClient interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// entityKind describes one level of the hierarchy.
type entityKind struct {
	span   string // span and log prefix, e.g. "subcategory"
	label  string // user-facing, e.g. "Subcategory"
	noun   string // used in "Failed to create <noun>."
	idKeys []string
}

var (
	categoryKind = entityKind{
		span: "category", label: "Category", noun: "category",
		idKeys: []string{aliasCategory},
	}
	subCategoryKind = entityKind{
		span: "subcategory", label: "Subcategory", noun: "subcategory",
		idKeys: []string{aliasSubCategory},
	}
	subSubCategoryKind = entityKind{
		span: "subsubcategory", label: "Sub-subcategory", noun: "sub-subcategory",
		idKeys: []string{aliasSubSubCategory},
	}
)

// Option configures a service.
type Option func(*service)

// WithNotifier sets the notifier for successful mutations.
func WithNotifier(n Notifier) Option {
	return func(s *service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// service holds what the three level services share.
type service struct {
	api      APIClient
	kind     entityKind
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func newService(api APIClient, kind entityKind, opts ...Option) service {
	s := service{
		api:      api,
		kind:     kind,
		notifier: NopNotifier{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = s.logger.Named(kind.span)
	return s
}

// fetch performs req and decodes the response envelope.
func (s *service) fetch(ctx context.Context, req client.Request) (client.Envelope, error) {
	resp, err := s.api.Do(ctx, req)
	if err != nil {
		return client.Envelope{}, err
	}
	return client.DecodeEnvelope(resp.Body, s.kind.idKeys...)
}

// remove performs req and reads the backend confirmation message.
func (s *service) remove(ctx context.Context, req client.Request) (DeleteResult, error) {
	resp, err := s.api.Do(ctx, req)
	if err != nil {
		return DeleteResult{}, err
	}

	if env, err := client.DecodeEnvelope(resp.Body, s.kind.idKeys...); err == nil {
		if err := env.Err(); err != nil {
			return DeleteResult{}, err
		}
	}

	msg, _ := client.ExtractMessage(resp.Body)
	if msg == "" {
		msg = fmt.Sprintf("%s deleted successfully", s.kind.label)
	}
	return DeleteResult{Message: msg}, nil
}

// createError gives a failed create its user-facing message: the backend
// message when there is one, else "Failed to create <noun>.".
func (s *service) createError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	fallback := fmt.Sprintf("Failed to create %s.", s.kind.noun)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.BackendMessage
		if msg == "" {
			msg = fallback
		}
		return apiErr.WithMessage(msg)
	}
	return &client.APIError{Message: fallback, Err: err}
}

func (s *service) notify(ctx context.Context, action Action, id, name string) {
	s.notifier.Notify(ctx, newNotification(action, s.kind.label, id, name))
}

func request(method, route string, params ...string) client.Request {
	return client.Request{
		Method: method,
		Path:   expandRoute(route, params...),
		Route:  route,
	}
}

// slugOrDefault returns slug, or the slug of name when slug is empty.
func slugOrDefault(slug, name string) string {
	if slug != "" {
		return slug
	}
	return GenerateSlug(name)
}

// updateSlug regenerates the slug only when a name is sent without a slug.
func updateSlug(name, slug *string) *string {
	if name == nil || *name == "" {
		return slug
	}
	if slug != nil && *slug != "" {
		return slug
	}
	generated := GenerateSlug(*name)
	return &generated
}

// nullableID maps nil and "" to nil.
func nullableID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
