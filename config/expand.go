package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// LookupFunc reports the value of a variable and whether it is set.
type LookupFunc func(key string) (string, bool)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandStrict expands variables in s using lookup.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded.
//   - If `${VAR}` is present but VAR is not set, it errors.
//   - `$$` emits a literal `$`.
func ExpandStrict(s string, lookup LookupFunc) (string, error) {
	const dollarSentinel = "\x00DBGATE_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(match[1]); !ok {
			missing[match[1]] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(keys, ", "))
	}

	s = os.Expand(s, func(key string) string {
		v, _ := lookup(key)
		return v
	})
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	const prefix = "secretref:"
	if !strings.HasPrefix(value, prefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, prefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// SecretProvider resolves a reference to its value.
type SecretProvider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvProvider resolves secretref:env:NAME.
type EnvProvider struct {
	Lookup LookupFunc
}

func (EnvProvider) Name() string { return "env" }

func (p EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.Lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, ref)
	}
	return v, nil
}

// FileProvider resolves secretref:file:/path, as used for mounted
// container secrets. Surrounding whitespace is trimmed.
type FileProvider struct{}

func (FileProvider) Name() string { return "file" }

func (FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("config: read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// resolveValue expands value and, when the result is a secret reference,
// replaces it with the provider's answer. Empty secrets are rejected.
func resolveValue(ctx context.Context, value string, lookup LookupFunc, providers ...SecretProvider) (string, error) {
	expanded, err := ExpandStrict(value, lookup)
	if err != nil {
		return "", err
	}

	name, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return expanded, nil
	}
	for _, p := range providers {
		if p.Name() != name {
			continue
		}
		v, err := p.Resolve(ctx, ref)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", fmt.Errorf("%w: provider %q returned an empty value", ErrInvalidSecret, name)
		}
		return v, nil
	}
	return "", fmt.Errorf("%w: provider %q is not registered", ErrInvalidSecret, name)
}
