// Package policy decides administrative actions with embedded Rego policies.
package policy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Reasons reported by the invite policy.
const (
	ReasonCallerInactive = "caller_inactive"
	ReasonCallerNotAdmin = "caller_not_admin"
	ReasonInvalidRole    = "invalid_role"
	ReasonInvalidExpiry  = "invalid_expiry"
)

//go:embed invites.rego
var invitesRego string

const invitesQuery = "data.passkey.invites.decision"

// InviteInput is the document the invite policy evaluates.
type InviteInput struct {
	CallerRole     string `json:"caller_role"`
	CallerActive   bool   `json:"caller_active"`
	Role           string `json:"role"`
	ExpiresInHours int    `json:"expires_in_hours"`
	MaxHours       int    `json:"max_hours"`
}

// Decision is the policy outcome. Reasons is sorted and empty when Allow is true.
type Decision struct {
	Allow   bool
	Reasons []string
}

// Has reports whether reason is among the deny reasons.
func (d Decision) Has(reason string) bool {
	for _, r := range d.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// InvitePolicy evaluates invite generation requests. It is safe for concurrent use.
type InvitePolicy struct {
	query rego.PreparedEvalQuery
}

// NewInvitePolicy compiles the embedded policy once.
func NewInvitePolicy(ctx context.Context) (*InvitePolicy, error) {
	compiler, err := ast.CompileModules(map[string]string{"invites.rego": invitesRego})
	if err != nil {
		return nil, fmt.Errorf("compile invite policy: %w", err)
	}

	pq, err := rego.New(
		rego.Query(invitesQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare invite policy: %w", err)
	}
	return &InvitePolicy{query: pq}, nil
}

func (p *InvitePolicy) Evaluate(ctx context.Context, in InviteInput) (Decision, error) {
	rs, err := p.query.Eval(ctx, rego.EvalInput(map[string]any{
		"caller_role":      in.CallerRole,
		"caller_active":    in.CallerActive,
		"role":             in.Role,
		"expires_in_hours": in.ExpiresInHours,
		"max_hours":        in.MaxHours,
	}))
	if err != nil {
		return Decision{}, fmt.Errorf("eval invite policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, errors.New("invite policy returned no result")
	}

	doc, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Decision{}, fmt.Errorf("invite policy returned %T", rs[0].Expressions[0].Value)
	}

	var d Decision
	d.Allow, _ = doc["allow"].(bool)
	if raw, ok := doc["reasons"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				d.Reasons = append(d.Reasons, s)
			}
		}
	}
	return d, nil
}
