package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownKeyword is returned by Library.Run for names it does not expose.
	ErrUnknownKeyword = errors.New("unknown keyword")
	// ErrKeywordArgs is returned when the arguments do not fit the keyword.
	ErrKeywordArgs = errors.New("invalid keyword arguments")
)

// Handler runs one keyword with positional arguments.
type Handler func(ctx context.Context, args []any) (any, error)

// Library exposes the keywords by name so a test runner can invoke them
// without knowing the Go method surface.
type Library struct {
	names    []string
	handlers map[string]Handler
}

// NewLibrary binds the keyword table to k.
func NewLibrary(k *Keywords) *Library {
	l := &Library{handlers: make(map[string]Handler)}

	l.register("get_users", func(ctx context.Context, args []any) (any, error) {
		if err := arity("get_users", args, 0, 0); err != nil {
			return nil, err
		}
		return k.GetUsers(ctx)
	})
	l.register("get_user_by_id", func(ctx context.Context, args []any) (any, error) {
		if err := arity("get_user_by_id", args, 1, 2); err != nil {
			return nil, err
		}
		expected := ""
		if len(args) == 2 && args[1] != nil {
			expected = fmt.Sprint(args[1])
		}
		return k.GetUserByID(ctx, fmt.Sprint(args[0]), expected)
	})
	l.register("create_user", func(ctx context.Context, args []any) (any, error) {
		if err := arity("create_user", args, 3, 3); err != nil {
			return nil, err
		}
		age, err := toInt(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: create_user age: %v", ErrKeywordArgs, err)
		}
		return k.CreateUser(ctx, fmt.Sprint(args[0]), age, fmt.Sprint(args[2]))
	})
	l.register("update_user", func(ctx context.Context, args []any) (any, error) {
		id, fields, err := idAndFields("update_user", args)
		if err != nil {
			return nil, err
		}
		return k.UpdateUser(ctx, id, fields)
	})
	l.register("patch_user", func(ctx context.Context, args []any) (any, error) {
		id, fields, err := idAndFields("patch_user", args)
		if err != nil {
			return nil, err
		}
		return k.PatchUser(ctx, id, fields)
	})
	l.register("soft_delete_user", func(ctx context.Context, args []any) (any, error) {
		if err := arity("soft_delete_user", args, 1, 1); err != nil {
			return nil, err
		}
		return nil, k.SoftDeleteUser(ctx, fmt.Sprint(args[0]))
	})
	l.register("get_all_users_including_deleted", func(ctx context.Context, args []any) (any, error) {
		if err := arity("get_all_users_including_deleted", args, 0, 0); err != nil {
			return nil, err
		}
		return k.GetAllUsersIncludingDeleted(ctx)
	})
	l.register("reset_rest_api", func(ctx context.Context, args []any) (any, error) {
		if err := arity("reset_rest_api", args, 0, 0); err != nil {
			return nil, err
		}
		return nil, k.ResetRESTAPI(ctx)
	})

	sort.Strings(l.names)
	return l
}

func (l *Library) register(name string, h Handler) {
	l.names = append(l.names, name)
	l.handlers[normalizeName(name)] = h
}

// Names lists the exposed keyword names.
func (l *Library) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Run invokes the named keyword. Names match case-insensitively with spaces and
// underscores ignored, so "Get User By Id" resolves to get_user_by_id.
func (l *Library) Run(ctx context.Context, name string, args ...any) (any, error) {
	h, ok := l.handlers[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyword, name)
	}
	return h(ctx, args)
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "").Replace(name)
}

func arity(name string, args []any, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrKeywordArgs, name, lo, len(args))
		}
		return fmt.Errorf("%w: %s expects %d to %d arguments, got %d", ErrKeywordArgs, name, lo, hi, len(args))
	}
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// idAndFields accepts either (id, map[string]any) or (id, "key=value", ...).
func idAndFields(name string, args []any) (string, map[string]any, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: %s expects a user id", ErrKeywordArgs, name)
	}
	id := fmt.Sprint(args[0])
	rest := args[1:]

	if len(rest) == 1 {
		if m, ok := rest[0].(map[string]any); ok {
			return id, m, nil
		}
	}

	fields := make(map[string]any, len(rest))
	for _, arg := range rest {
		s, ok := arg.(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s field %v is not key=value", ErrKeywordArgs, name, arg)
		}
		key, raw, found := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return "", nil, fmt.Errorf("%w: %s field %q is not key=value", ErrKeywordArgs, name, s)
		}
		var val any
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			val = raw
		}
		fields[key] = val
	}
	return id, fields, nil
}
