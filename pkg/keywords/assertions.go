package keywords

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/samvad-hq/users-api-keywords/pkg/httpclient"
)

// ErrAssertion is matched by every *AssertionError.
var ErrAssertion = errors.New("assertion failed")

// AssertionError reports an expectation about a response that did not hold.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

func (e *AssertionError) Unwrap() error { return ErrAssertion }

func assertionf(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// IsAssertion reports whether err is (or wraps) an assertion failure.
func IsAssertion(err error) bool {
	return errors.Is(err, ErrAssertion)
}

// Decode parses the response body as JSON.
func Decode(resp httpclient.Response) (any, error) {
	var out any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return out, nil
}

// AssertStatus fails when the response status differs from expected.
func AssertStatus(resp httpclient.Response, expected int) error {
	if got := resp.StatusCode(); got != expected {
		return assertionf("expected status %d, but got %d", expected, got)
	}
	return nil
}

// AssertContains fails when the decoded body is not an object holding key.
func AssertContains(resp httpclient.Response, key string) error {
	_, err := lookup(resp, key)
	return err
}

// AssertContainsValue fails when key is missing or its decoded value differs from want.
// want is compared after a JSON round trip, so 30 and 30.0 are equal.
func AssertContainsValue(resp httpclient.Response, key string, want any) error {
	got, err := lookup(resp, key)
	if err != nil {
		return err
	}
	normalized, err := normalize(want)
	if err != nil {
		return fmt.Errorf("normalize expected value for key %s: %w", key, err)
	}
	if !reflect.DeepEqual(normalized, got) {
		return assertionf("expected %v for key %s, but got %v", want, key, got)
	}
	return nil
}

func lookup(resp httpclient.Response, key string) (any, error) {
	body, err := Decode(resp)
	if err != nil {
		return nil, err
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, assertionf("response does not contain key: %s", key)
	}
	val, ok := obj[key]
	if !ok {
		return nil, assertionf("response does not contain key: %s", key)
	}
	return val, nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
