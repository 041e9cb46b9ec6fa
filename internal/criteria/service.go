package criteria

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"merx/internal/criteria/metrics"
	"merx/pkg/domain"
	"merx/pkg/platform/audit"
	"merx/pkg/requestcontext"
)

const defaultEvidenceTimeout = 2 * time.Second

// Service evaluates criteria sets and manages their persistence. The
// registry is read-only after construction; all evaluation state is
// per-call, so a single Service is safe for concurrent use.
type Service struct {
	registry *Registry
	store    CriterionStore
	carts    CartStore
	orders   OrderStore
	catalog  CatalogStore

	audit   audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	evidenceTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAudit(p audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithEvidenceTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.evidenceTimeout = d
	}
}

func New(
	registry *Registry,
	store CriterionStore,
	carts CartStore,
	orders OrderStore,
	catalog CatalogStore,
	opts ...Option,
) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("criterion store is required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog store is required")
	}

	svc := &Service{
		registry:        registry,
		store:           store,
		carts:           carts,
		orders:          orders,
		catalog:         catalog,
		tracer:          otel.Tracer("merx/criteria"),
		evidenceTimeout: defaultEvidenceTimeout,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Registry exposes the type registry for listing and the factory.
func (s *Service) Registry() *Registry { return s.registry }

// CriterionResult is the per-criterion breakdown of a decision.
type CriterionResult struct {
	CriterionID uuid.UUID `json:"criterion_id"`
	ContentType string    `json:"content_type"`
	Valid       bool      `json:"valid"`
}

// Decision is the outcome of evaluating one owner's criteria set.
// Evaluation short-circuits, so Results may cover a prefix of the set
// when the decision is invalid.
type Decision struct {
	Owner       domain.OwnerRef   `json:"owner"`
	Valid       bool              `json:"valid"`
	Results     []CriterionResult `json:"results"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
}

// ownerStack tracks owners currently being evaluated on this call
// path; re-entering one means the discount reference graph has a
// cycle.
type ownerStack map[domain.OwnerRef]bool

// EvaluateOwner decides whether the owner's criteria set currently
// holds: the conjunction of all its criteria, true when the set is
// empty.
func (s *Service) EvaluateOwner(ctx context.Context, owner domain.OwnerRef, subject *domain.ProductID) (*Decision, error) {
	return s.evaluateOwner(ctx, owner, subject, make(ownerStack))
}

func (s *Service) evaluateOwner(ctx context.Context, owner domain.OwnerRef, subject *domain.ProductID, stack ownerStack) (*Decision, error) {
	if stack[owner] {
		return nil, fmt.Errorf("evaluate %s: %w", owner, ErrCriteriaCycle)
	}
	stack[owner] = true
	defer delete(stack, owner)

	ctx, span := s.tracer.Start(ctx, "criteria.EvaluateOwner",
		trace.WithAttributes(
			attribute.String("owner.kind", owner.Kind.String()),
			attribute.String("owner.id", owner.ID),
		))
	defer span.End()

	start := time.Now()

	set, err := s.store.ListForOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list criteria for %s: %w", owner, err)
	}

	decision := &Decision{
		Owner:       owner,
		Valid:       true,
		Results:     make([]CriterionResult, 0, len(set)),
		EvaluatedAt: requestcontext.Now(ctx),
	}

	if len(set) > 0 {
		ev, err := s.gatherEvidence(ctx, set, subject, stack)
		if err != nil {
			return nil, err
		}

		for _, c := range set {
			valid, err := s.evaluate(ctx, c, ev)
			if err != nil {
				return nil, err
			}
			s.metrics.IncrementCriterion(c.ContentType, valid)
			decision.Results = append(decision.Results, CriterionResult{
				CriterionID: c.ID,
				ContentType: c.ContentType,
				Valid:       valid,
			})
			if !valid {
				decision.Valid = false
				break
			}
		}
	}

	span.SetAttributes(attribute.Bool("decision.valid", decision.Valid))
	s.metrics.IncrementOwner(owner.Kind.String(), decision.Valid)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	s.emitDecision(ctx, owner, subject, decision)

	if s.logger != nil {
		s.logger.DebugContext(ctx, "criteria evaluated",
			"owner", owner.String(),
			"valid", decision.Valid,
			"criteria", len(set),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return decision, nil
}

// EvaluateCriterion decides a single criterion outside of any owner
// set, gathering only the evidence that criterion reads.
func (s *Service) EvaluateCriterion(ctx context.Context, c Criterion, subject *domain.ProductID) (bool, error) {
	ev, err := s.gatherEvidence(ctx, []Criterion{c}, subject, make(ownerStack))
	if err != nil {
		return false, err
	}
	return s.evaluate(ctx, c, ev)
}

// evaluate resolves the definition, enforces operator legality, and
// runs the type's evaluation function.
func (s *Service) evaluate(ctx context.Context, c Criterion, ev *Evidence) (bool, error) {
	def, err := s.registry.Lookup(c.ContentType)
	if err != nil {
		return false, err
	}
	if !def.Allows(c.Operator) {
		return false, fmt.Errorf("criterion %s type %q operator %q: %w",
			c.ID, c.ContentType, c.Operator, ErrIllegalOperator)
	}
	return def.Evaluate(ctx, c, ev)
}

// CriteriaForOwner returns the owner's persisted criteria in position
// order.
func (s *Service) CriteriaForOwner(ctx context.Context, owner domain.OwnerRef) ([]Criterion, error) {
	return s.store.ListForOwner(ctx, owner)
}

// SaveCriteria replaces the owner's criteria set. Items must come out
// of the registry factory; this stamps owner and positions.
func (s *Service) SaveCriteria(ctx context.Context, owner domain.OwnerRef, items []Criterion) error {
	for i := range items {
		items[i].Owner = owner
		items[i].Position = i
	}
	if err := s.store.ReplaceForOwner(ctx, owner, items); err != nil {
		return fmt.Errorf("replace criteria for %s: %w", owner, err)
	}
	return nil
}

// DeleteCriteria removes the owner's criteria set when the owning
// business object goes away.
func (s *Service) DeleteCriteria(ctx context.Context, owner domain.OwnerRef) error {
	if err := s.store.DeleteForOwner(ctx, owner); err != nil {
		return fmt.Errorf("delete criteria for %s: %w", owner, err)
	}
	return nil
}

// emitDecision publishes the decision event, fail-open.
func (s *Service) emitDecision(ctx context.Context, owner domain.OwnerRef, subject *domain.ProductID, decision *Decision) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:  decision.EvaluatedAt,
		Owner:      owner,
		OwnerKind:  owner.Kind.String(),
		OwnerID:    owner.ID,
		UserID:     requestcontext.UserID(ctx).String(),
		SessionKey: requestcontext.SessionKey(ctx),
		Valid:      decision.Valid,
		RequestID:  requestcontext.RequestID(ctx),
	}
	if subject != nil {
		event.Subject = subject.String()
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "decision audit emit failed",
			"owner", owner.String(),
			"error", err,
		)
	}
}

// discountValidator recursively evaluates discounts referenced by a
// discount criterion, carrying the owner stack for cycle detection.
type discountValidator struct {
	service *Service
	subject *domain.ProductID
	stack   ownerStack
}

func (v *discountValidator) Validate(ctx context.Context, id domain.DiscountID) (bool, bool, error) {
	info, err := v.service.catalog.Discount(ctx, id)
	if err != nil {
		return false, false, fmt.Errorf("resolve discount %s: %w", id, err)
	}
	// A referenced discount that no longer exists counts as inactive.
	if info == nil || !info.Active {
		return false, false, nil
	}

	decision, err := v.service.evaluateOwner(ctx, domain.DiscountOwner(id), v.subject, v.stack)
	if err != nil {
		return false, false, err
	}
	return true, decision.Valid, nil
}
