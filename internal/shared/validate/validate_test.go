package validate

import (
	"errors"
	"fmt"
	"testing"
)

type contact struct {
	Name  string  `json:"full_name" validate:"required,max=5"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone_number" validate:"omitempty,phone"`
	Cost  *int    `json:"expert_cost" validate:"required,min=0"`
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestStructReportsEveryField(t *testing.T) {
	errs := Struct(contact{Name: "too long name", Email: "nope", Phone: strPtr("12345"), Cost: intPtr(-1)})
	want := map[string]string{
		"full_name":    "Ensure this field has no more than 5 characters.",
		"email":        "Enter a valid email address.",
		"phone_number": PhoneMessage,
		"expert_cost":  "Ensure this value is greater than or equal to 0.",
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs)
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("%s: got %q want %q", field, errs[field], msg)
		}
	}
}

func TestStructRequired(t *testing.T) {
	errs := Struct(contact{})
	for _, field := range []string{"full_name", "email", "expert_cost"} {
		if errs[field] != "This field is required." {
			t.Errorf("%s: got %q", field, errs[field])
		}
	}
	if _, ok := errs["phone_number"]; ok {
		t.Errorf("phone_number is optional")
	}
}

func TestStructValid(t *testing.T) {
	if errs := Struct(contact{Name: "Jane", Email: "jane@example.com", Phone: strPtr("+628123456789"), Cost: intPtr(0)}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if errs := Struct(contact{Name: "Jane", Email: "jane@example.com", Phone: strPtr(""), Cost: intPtr(10)}); errs != nil {
		t.Fatalf("blank phone should pass, got %v", errs)
	}
	if errs := Struct(contact{Name: "Jane", Email: "jane@example.com", Phone: strPtr("   "), Cost: intPtr(10)}); errs != nil {
		t.Fatalf("whitespace phone should pass, got %v", errs)
	}
}

func TestStructUpperBound(t *testing.T) {
	type bounded struct {
		Calls *int64 `json:"expected_calls" validate:"required,lte=2147483647"`
	}
	big := int64(2147483648)
	errs := Struct(bounded{Calls: &big})
	if errs["expected_calls"] != "Ensure this value is less than or equal to 2147483647." {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]bool{
		"+999999999":       true,
		"1234567":          true,
		"123456789012345":  true,
		"123456":           false,
		"1234567890123456": false,
		"+12-345-6789":     false,
		"":                 false,
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Errorf("Phone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestErrorsAsError(t *testing.T) {
	errs := Errors{}
	if errs.Err() != nil {
		t.Fatalf("empty errors should be nil")
	}
	errs.Add("email", "first")
	errs.Add("email", "second")
	if errs["email"] != "first" {
		t.Fatalf("Add should keep the first message")
	}
	wrapped := fmt.Errorf("create: %w", errs.Err())
	got, ok := AsErrors(wrapped)
	if !ok || got["email"] != "first" {
		t.Fatalf("AsErrors failed: %v %v", got, ok)
	}
	if _, ok := AsErrors(errors.New("plain")); ok {
		t.Fatalf("plain error is not field errors")
	}
}
