package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// StepResult records how many rows one step touched.
type StepResult struct {
	Step Step
	Rows int64
}

// Result is the outcome of a fully applied plan.
type Result struct {
	Plan  Plan
	Steps []StepResult
}

// Rows sums the rows touched by every step of the given kind.
func (r Result) Rows(kind Kind) int64 {
	var n int64
	for _, s := range r.Steps {
		if s.Step.Kind == kind {
			n += s.Rows
		}
	}
	return n
}

// Total sums the rows touched by every step.
func (r Result) Total() int64 {
	var n int64
	for _, s := range r.Steps {
		n += s.Rows
	}
	return n
}

// Executor applies plans. It holds no state; one value can be shared.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run applies every step of plan through tx, which must be bound to an open
// transaction. The first failing step aborts the run and its error is
// returned so the caller's transaction rolls back. A root row that is
// already gone reports NOT_FOUND.
func (e *Executor) Run(ctx context.Context, tx repository.Store, plan Plan) (res Result, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "cascade.run",
		attribute.String("cascade.root", string(plan.Root)),
		attribute.Int64("cascade.root_id", int64(plan.RootID)),
		attribute.Int("cascade.steps", len(plan.Steps)),
	)
	defer func() {
		observability.EndSpan(span, err)
		observability.ObserveCascade(string(plan.Root), start, err)
	}()

	res = Result{Plan: plan, Steps: make([]StepResult, 0, len(plan.Steps))}
	for _, step := range plan.Steps {
		rows, stepErr := e.apply(ctx, tx, step)
		if stepErr != nil {
			slog.ErrorContext(ctx, "cascade step failed",
				slog.String("root", string(plan.Root)),
				slog.Uint64("root_id", uint64(plan.RootID)),
				slog.String("step", step.String()),
				slog.String("error", stepErr.Error()),
			)
			return Result{Plan: plan}, stepErr
		}
		if isRootStep(plan, step) && rows == 0 {
			return Result{Plan: plan}, models.NewNotFoundError(rootResource(plan.Root), plan.RootID)
		}
		res.Steps = append(res.Steps, StepResult{Step: step, Rows: rows})
	}

	// Counters are only bumped once every step succeeded.
	for _, s := range res.Steps {
		if s.Rows > 0 {
			observability.CascadeRowsDeleted.WithLabelValues(string(s.Step.Kind)).Add(float64(s.Rows))
		}
	}
	return res, nil
}

func (e *Executor) apply(ctx context.Context, tx repository.Store, step Step) (int64, error) {
	defer observability.TrackQuery("cascade_delete", string(step.Kind))()
	id := step.TargetID
	switch step.Kind {
	case LikesOnPost:
		return tx.Likes().DeleteByPost(ctx, id)
	case CommentsOnPost:
		return tx.Comments().DeleteByPost(ctx, id)
	case MediaOnPost:
		return tx.Media().DeleteByPost(ctx, id)
	case NotificationsOnPost:
		return tx.Notifications().DeleteByReference(ctx, id, models.NotificationLike, models.NotificationComment)
	case DetachPostReports:
		return tx.Reports().DetachPost(ctx, id)
	case PostRow:
		return tx.Posts().Delete(ctx, id)
	case LikesByUser:
		return tx.Likes().DeleteByUser(ctx, id)
	case CommentsByUser:
		return tx.Comments().DeleteByUser(ctx, id)
	case UserSubscriptions:
		return tx.Subscriptions().DeleteByUser(ctx, id)
	case UserReports:
		return tx.Reports().DeleteByUser(ctx, id)
	case UserNotifications:
		return tx.Notifications().DeleteByUser(ctx, id)
	case UserRow:
		return tx.Users().Delete(ctx, id)
	default:
		return 0, models.NewInternalError(fmt.Errorf("unknown cascade step %q", step.Kind))
	}
}

func isRootStep(plan Plan, step Step) bool {
	if step.TargetID != plan.RootID {
		return false
	}
	switch plan.Root {
	case RootPost:
		return step.Kind == PostRow
	case RootUser:
		return step.Kind == UserRow
	}
	return false
}

func rootResource(root Root) string {
	if root == RootUser {
		return "User"
	}
	return "Post"
}
