package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/driftworks/idlereap/internal/monitor"
	"github.com/driftworks/idlereap/internal/store"
)

type identityResolver interface {
	Resolve(ctx context.Context) (string, error)
}

type destroyInvoker interface {
	HasToken() bool
	Destroy(ctx context.Context, dropletID string) error
}

// SelfDestruct sequences identity resolution and the destroy call as
// the monitor's triggered action. It is invoked at most once per
// process lifetime; the monitor's state machine guarantees that.
type SelfDestruct struct {
	resolver identityResolver
	invoker  destroyInvoker
	journal  *store.Store // optional
	logger   *slog.Logger
}

// NewSelfDestruct composes the action. The journal store may be nil.
func NewSelfDestruct(resolver *IdentityResolver, invoker *DropletClient, journal *store.Store, logger *slog.Logger) *SelfDestruct {
	return &SelfDestruct{
		resolver: resolver,
		invoker:  invoker,
		journal:  journal,
		logger:   logger,
	}
}

// Execute runs the one-shot self-destruct sequence: credential check,
// identity lookup, destroy call. Every failure is logged; only the
// missing credential is surfaced as a configuration error. Panics are
// contained so an unexpected fault cannot crash the process before it
// gets to exit on its own terms.
func (a *SelfDestruct) Execute(ctx context.Context) (out monitor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("self-destruct panicked", "panic", r)
			out = monitor.Outcome{
				Kind: monitor.OutcomeFailed,
				Err:  fmt.Errorf("self-destruct panicked: %v", r),
			}
			a.record(out, "")
		}
	}()

	if !a.invoker.HasToken() {
		a.logger.Error("no API token configured, refusing to self-destruct")
		out = monitor.Outcome{
			Kind:   monitor.OutcomeAborted,
			Reason: "missing credential",
			Err:    ErrMissingToken,
		}
		a.record(out, "")
		return out
	}

	id, err := a.resolver.Resolve(ctx)
	if err != nil {
		a.logger.Error("could not resolve droplet id", "error", err)
		out = monitor.Outcome{
			Kind:   monitor.OutcomeAborted,
			Reason: "identity unresolved",
			Err:    err,
		}
		a.record(out, "")
		return out
	}

	a.logger.Info("requesting droplet destroy", "droplet_id", id)
	if err := a.invoker.Destroy(ctx, id); err != nil {
		a.logger.Error("destroy request failed", "droplet_id", id, "error", err)
		out = monitor.Outcome{Kind: monitor.OutcomeFailed, Err: err}
		a.record(out, id)
		return out
	}

	a.logger.Info("destroy request accepted", "droplet_id", id)
	out = monitor.Outcome{Kind: monitor.OutcomeDestroyed}
	a.record(out, id)
	return out
}

// record appends the outcome to the action log. Journal failures only
// warn; the outcome itself already happened.
func (a *SelfDestruct) record(out monitor.Outcome, dropletID string) {
	if a.journal == nil {
		return
	}

	detail := out.Reason
	if out.Err != nil {
		detail = out.Err.Error()
	}
	rec := store.ActionRecord{
		Outcome:    out.Kind.String(),
		Detail:     detail,
		DropletID:  dropletID,
		OccurredAt: time.Now(),
	}
	if err := a.journal.RecordAction(rec); err != nil {
		a.logger.Warn("could not journal action outcome", "error", err)
	}
}
