// Package roles determines a user's effective role. Role assignments have
// accumulated in several backend schemas over time, so resolution walks a
// prioritized list of candidate sources and reduces whatever it finds to a
// single role label.
package roles

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stratahr/strata-client/internal/backend"
	"github.com/stratahr/strata-client/internal/logging"
)

// Role labels known to the client.
const (
	RoleHR       = "hr"
	RoleAssessor = "assessor"
	RoleEmployee = "employee"
)

// Querier is the slice of the backend the resolver needs.
type Querier interface {
	From(table string) *backend.QueryBuilder
}

type Resolver struct {
	q   Querier
	log logging.Logger

	provisionTimeout time.Duration
}

func NewResolver(q Querier, log logging.Logger) *Resolver {
	return &Resolver{q: q, log: log, provisionTimeout: 10 * time.Second}
}

// strategy is one candidate role source. A fetch error and an empty result
// both mean "fall through to the next source".
type strategy struct {
	table   string
	columns string
}

// Sources in strict precedence order: the assignment-join table, the direct
// per-user table, the roles view, and its older alternate name.
func (r *Resolver) strategies() []strategy {
	return []strategy{
		{table: "user_role_assignments", columns: "role_name, roles(role_name)"},
		{table: "user_roles", columns: "role_name"},
		{table: "user_roles_view", columns: "role_name"},
		{table: "v_user_roles", columns: "role_name"},
	}
}

// Resolve determines the effective role for userID as a one-element slice.
//
// The function is total: query errors, malformed rows, and panics all
// degrade to the default role rather than propagating. When no source holds
// any assignment, the default role is provisioned against the backend in a
// detached goroutine and returned immediately without waiting.
func (r *Resolver) Resolve(ctx context.Context, userID string) (result []string) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error(ctx, "role resolution panicked", "user_id", userID, "panic", p)
			result = []string{RoleEmployee}
		}
	}()

	for _, s := range r.strategies() {
		rows, err := r.q.From(s.table).Select(s.columns).Eq("user_id", userID).Do(ctx)
		if err != nil {
			r.log.Warn(ctx, "role source failed, trying next", "source", s.table, "error", err)
			continue
		}

		candidates := extractRoleNames(rows)
		if len(candidates) == 0 {
			continue
		}

		role := pickRole(candidates)
		r.log.Debug(ctx, "role resolved", "user_id", userID, "source", s.table, "role", role)
		return []string{role}
	}

	r.log.Info(ctx, "no role assignment found, provisioning default", "user_id", userID)
	go r.provisionDefault(userID)
	return []string{RoleEmployee}
}

// pickRole reduces a non-empty candidate set to one label: hr wins over
// everything, assessor over the rest, otherwise the first candidate in
// result order.
func pickRole(candidates []string) string {
	for _, c := range candidates {
		if c == RoleHR {
			return RoleHR
		}
	}
	for _, c := range candidates {
		if c == RoleAssessor {
			return RoleAssessor
		}
	}
	return candidates[0]
}

// extractRoleNames pulls role-name strings out of heterogeneous row shapes:
// {"role_name": "hr"}, {"roles": {"role_name": "hr"}}, {"roles": "hr"}, or
// the result element itself being a plain string.
func extractRoleNames(rows []any) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		switch v := row.(type) {
		case string:
			if v != "" {
				names = append(names, v)
			}
		case map[string]any:
			if name := roleNameFromRow(v); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func roleNameFromRow(row map[string]any) string {
	if nested, ok := row["roles"].(map[string]any); ok {
		if name, ok := nested["role_name"].(string); ok && name != "" {
			return name
		}
	}
	if name, ok := row["roles"].(string); ok && name != "" {
		return name
	}
	if name, ok := row["role_name"].(string); ok {
		return name
	}
	return ""
}

// provisionDefault inserts the default role assignment for userID. It runs
// detached from the resolution that triggered it; failures are logged and
// never reach the caller.
func (r *Resolver) provisionDefault(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.provisionTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			r.log.Error(ctx, "default role provisioning panicked", "user_id", userID, "panic", p)
		}
	}()

	row := backend.Row{"id": uuid.NewString(), "user_id": userID, "role_name": RoleEmployee}
	if _, err := r.q.From("user_roles").Insert(row).Do(ctx); err != nil {
		r.log.Error(ctx, "default role provisioning failed", "user_id", userID, "error", err)
		return
	}
	r.log.Info(ctx, "default role provisioned", "user_id", userID)
}

// OrganizationID looks up the user's organization, best effort: any failure
// or absence yields an empty string.
func (r *Resolver) OrganizationID(ctx context.Context, userID string) string {
	rows, err := r.q.From("employees").Select("organization_id").Eq("user_id", userID).Do(ctx)
	if err != nil {
		r.log.Warn(ctx, "organization lookup failed", "user_id", userID, "error", err)
		return ""
	}
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			if org, ok := m["organization_id"].(string); ok && org != "" {
				return org
			}
		}
	}
	return ""
}
