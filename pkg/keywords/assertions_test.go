package keywords

import (
	"strings"
	"testing"
)

func TestAssertStatus(t *testing.T) {
	if err := AssertStatus(stubResponse{status: 200}, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := AssertStatus(stubResponse{status: 404}, 200)
	if !IsAssertion(err) {
		t.Fatalf("expected assertion error, got %v", err)
	}
	if err.Error() != "expected status 200, but got 404" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestAssertContains(t *testing.T) {
	resp := stubResponse{status: 200, body: []byte(`{"name":"Anna","age":25}`)}

	if err := AssertContains(resp, "age"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := AssertContains(resp, "city")
	if !IsAssertion(err) || !strings.Contains(err.Error(), "city") {
		t.Fatalf("expected missing key assertion, got %v", err)
	}
}

func TestAssertContainsValue(t *testing.T) {
	resp := stubResponse{status: 200, body: []byte(`{"name":"Anna","age":25,"tags":["a"]}`)}

	if err := AssertContainsValue(resp, "name", "Anna"); err != nil {
		t.Fatalf("name: %v", err)
	}
	if err := AssertContainsValue(resp, "age", 25); err != nil {
		t.Fatalf("int should equal decoded number: %v", err)
	}
	if err := AssertContainsValue(resp, "tags", []string{"a"}); err != nil {
		t.Fatalf("tags: %v", err)
	}

	err := AssertContainsValue(resp, "name", "Maria")
	if !IsAssertion(err) {
		t.Fatalf("expected assertion error, got %v", err)
	}
	if err.Error() != "expected Maria for key name, but got Anna" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestAssertContainsOnNonObjectBody(t *testing.T) {
	err := AssertContains(stubResponse{status: 200, body: []byte(`["name"]`)}, "name")
	if !IsAssertion(err) {
		t.Fatalf("expected assertion error for array body, got %v", err)
	}
}

func TestAssertContainsDecodeFailure(t *testing.T) {
	err := AssertContains(stubResponse{status: 200, body: []byte(`oops`)}, "name")
	if err == nil || IsAssertion(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if !strings.Contains(err.Error(), "decode response body") {
		t.Fatalf("message = %q", err.Error())
	}
}
