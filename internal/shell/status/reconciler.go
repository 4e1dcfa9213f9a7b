// Package status reconciles a deployment's externally reported status from
// two layers of signal: the provider's instance lifecycle state and, when the
// instance runs, an HTTP health probe against the application itself.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/buildvm/buildvm/internal/core/domain"
	"github.com/buildvm/buildvm/internal/shell/cloud"
)

// Options configures a single status check.
type Options struct {
	// SkipHealth suppresses the HTTP probe; the provider state alone is
	// reported.
	SkipHealth bool
}

// Result is one reconciled status. ProviderStatus preserves the raw provider
// state even when the reported Status was downgraded by a failed probe.
type Result struct {
	Status         domain.Status
	ProviderStatus string
	Detail         string
	Err            error
}

// Reconciler polls instance state and health endpoints.
type Reconciler struct {
	api    cloud.InstanceAPI
	client *http.Client
	logger *slog.Logger
}

// New creates a reconciler. The HTTP client's per-probe timeout comes from
// each deployment's health spec, so the client itself carries none.
func New(api cloud.InstanceAPI, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		api:    api,
		client: &http.Client{},
		logger: logger.With("component", "status"),
	}
}

// Check reconciles one deployment's status. Lookup and probe failures are
// carried in the result, never raised: a status read degrades gracefully so
// listings can annotate the affected row and continue.
func (r *Reconciler) Check(ctx context.Context, dep *domain.Deployment, opts Options) Result {
	inst, err := r.api.GetInstance(ctx, dep.InstanceID)
	if err != nil {
		if errors.Is(err, cloud.ErrInstanceNotFound) {
			return Result{
				Status: domain.StatusMissing,
				Detail: fmt.Sprintf("instance %d not found", dep.InstanceID),
			}
		}
		return Result{
			Status: domain.StatusUnknown,
			Detail: "failed to fetch instance status",
			Err:    err,
		}
	}

	mapped := domain.MapInstanceStatus(inst.Status)
	result := Result{
		Status:         mapped,
		ProviderStatus: inst.Status,
		Detail:         "instance status: " + inst.Status,
	}

	if mapped == domain.StatusRunning && !opts.SkipHealth && dep.Health != nil {
		spec := *dep.Health
		spec.Port = dep.ProbePort()
		healthy, detail := r.probe(ctx, dep.Hostname, spec)
		result.Detail = detail
		if !healthy {
			result.Status = domain.StatusDegraded
		}
	}
	return result
}

// probe issues the HTTP health check. Any outcome other than an acceptable
// response code - wrong code, timeout, connection error - is unhealthy.
func (r *Reconciler) probe(ctx context.Context, hostname string, spec domain.HealthSpec) (bool, string) {
	url := spec.URL(hostname)

	probeCtx, cancel := context.WithTimeout(ctx, spec.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Sprintf("health check failed: %v", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("health check failed: %v", err)
	}
	defer resp.Body.Close()

	if !spec.Accepts(resp.StatusCode) {
		return false, fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return true, "HTTP health OK"
}

// CheckAll reconciles a list of deployments sequentially, for the synchronous
// command path. Dashboard consumers use the poller package instead.
func (r *Reconciler) CheckAll(ctx context.Context, deps []domain.Deployment, opts Options) []Result {
	results := make([]Result, len(deps))
	for i := range deps {
		results[i] = r.Check(ctx, &deps[i], opts)
	}
	return results
}
