// Package engine evaluates role-to-permission policies with OPA Rego.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const permissionQuery = "data.sessiond.permissions.grant"

// Default Rego policy mapping roles to permission grants.
const defaultRegoPolicy = `package sessiond.permissions

role_grants := {
	"admin":  {"read", "write", "delete", "admin"},
	"editor": {"read", "write"},
	"viewer": {"read"},
}

grant contains p if {
	some role in input.roles
	some p in role_grants[role]
}
`

// OPAEvaluator derives permission sets from role grants using OPA Rego.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the given Rego policies, falling back to the
// default policy when none are supplied.
func NewOPAEvaluator(policies ...string) (*OPAEvaluator, error) {
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}
	modules := make(map[string]string)
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// HealthCheck verifies the compiled policy can be evaluated. Returns nil on
// success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.PermissionsForRoles(ctx, nil)
	return err
}

// PermissionsForRoles evaluates the policy for the given roles and returns
// the granted permissions, sorted and deduplicated. Roles the policy does not
// know contribute nothing.
func (e *OPAEvaluator) PermissionsForRoles(ctx context.Context, roles []string) ([]string, error) {
	if roles == nil {
		roles = []string{}
	}
	q := rego.New(
		rego.Query(permissionQuery),
		rego.Compiler(e.compiler),
		rego.Input(map[string]interface{}{"roles": roles}),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("policy query returned no result")
	}

	values, ok := rs[0].Expressions[0].Value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("policy grant is not a set of strings")
	}
	seen := make(map[string]bool, len(values))
	perms := make([]string, 0, len(values))
	for _, v := range values {
		p, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("policy grant contains non-string value %v", v)
		}
		if !seen[p] {
			seen[p] = true
			perms = append(perms, p)
		}
	}
	sort.Strings(perms)
	return perms, nil
}
