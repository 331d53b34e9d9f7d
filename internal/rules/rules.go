// Copyright (c) 2026-present the Firefly Framework authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rules compiles and evaluates ordered authorization rules.
//
// Rules are written as expr expressions over the verified token claims
// and request metadata. They are compiled once at startup; a malformed
// expression is a configuration error, not a request error. At request
// time, rules are scanned in order and the first matching rule decides;
// if no rule matches, access is denied.
package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
)

// Result captures the outcome of evaluating the rules for one request.
type Result struct {
	// Allow reports whether access is granted. When false, the caller
	// should reject the request; User and Roles are zero-valued.
	Allow bool
	// User is the authenticated principal to act as.
	User string
	// Roles lists the roles granted to the principal.
	Roles []string
}

// rule is one compiled allow or deny rule.
type rule struct {
	deny  bool
	when  *vm.Program // required; evaluates to bool
	user  *vm.Program // optional; evaluates to string
	roles *vm.Program // optional; evaluates to a list of strings
}

// Engine evaluates a fixed, ordered rule list.
type Engine struct {
	rules []rule
}

// Compile translates rule configurations into an Engine. It fails on the
// first rule whose mode is unknown or whose expressions do not compile.
func Compile(cfgs []config.Rule) (*Engine, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}
	env := expr.Env(Environment{})
	rules := make([]rule, 0, len(cfgs))
	for i, cfg := range cfgs {
		r, err := compile(cfg, env)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	return &Engine{rules: rules}, nil
}

func compile(cfg config.Rule, env expr.Option) (rule, error) {
	var r rule
	switch mode := strings.ToLower(strings.TrimSpace(cfg.Mode)); mode {
	case "", "allow":
	case "deny":
		r.deny = true
	default:
		return rule{}, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	when := strings.TrimSpace(cfg.When)
	if when == "" {
		return rule{}, fmt.Errorf("when is required")
	}
	prog, err := expr.Compile(when, env, expr.AsBool())
	if err != nil {
		return rule{}, fmt.Errorf("compile when: %w", err)
	}
	r.when = prog

	if r.deny {
		if strings.TrimSpace(cfg.User) != "" || strings.TrimSpace(cfg.Roles) != "" {
			return rule{}, fmt.Errorf("user and roles must not be set in deny mode")
		}
		return r, nil
	}

	if user := strings.TrimSpace(cfg.User); user != "" {
		prog, err := expr.Compile(user, env)
		if err != nil {
			return rule{}, fmt.Errorf("compile user: %w", err)
		}
		r.user = prog
	}
	if roles := strings.TrimSpace(cfg.Roles); roles != "" {
		prog, err := expr.Compile(roles, env)
		if err != nil {
			return rule{}, fmt.Errorf("compile roles: %w", err)
		}
		r.roles = prog
	}
	return r, nil
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Eval scans the rules in order. The first rule whose condition holds
// decides: a deny rule rejects immediately, an allow rule grants access
// with its evaluated user and roles. With no match, access is denied and
// a zero Result with nil error is returned so the caller decides how to
// respond.
func (e *Engine) Eval(env Environment) (Result, error) {
	for _, r := range e.rules {
		pass, err := r.evalWhen(env)
		if err != nil {
			return Result{}, err
		}
		if !pass {
			continue
		}
		if r.deny {
			return Result{}, nil
		}
		user, err := r.evalUser(env)
		if err != nil {
			return Result{}, err
		}
		roles, err := r.evalRoles(env)
		if err != nil {
			return Result{}, err
		}
		return Result{Allow: true, User: user, Roles: roles}, nil
	}
	return Result{}, nil
}

func (r *rule) evalWhen(env Environment) (bool, error) {
	v, err := expr.Run(r.when, env)
	if err != nil {
		return false, fmt.Errorf("eval when: %w", err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("when must evaluate to bool, got %T", v)
	}
	return b, nil
}

func (r *rule) evalUser(env Environment) (string, error) {
	if r.user == nil {
		return "", nil
	}
	v, err := expr.Run(r.user, env)
	if err != nil {
		return "", fmt.Errorf("eval user: %w", err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("user must evaluate to string, got %T", v)
	}
	return s, nil
}

func (r *rule) evalRoles(env Environment) ([]string, error) {
	if r.roles == nil {
		return nil, nil
	}
	v, err := expr.Run(r.roles, env)
	if err != nil {
		return nil, fmt.Errorf("eval roles: %w", err)
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		roles := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("role at %d must be string, got %T", i, e)
			}
			roles[i] = s
		}
		return roles, nil
	default:
		return nil, fmt.Errorf("roles must evaluate to a string list, got %T", v)
	}
}
