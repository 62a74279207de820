// Package org defines the organization domain: value objects, the
// Department/Position/Employee aggregates, and the repository contracts the
// import core and query services operate against.
package org

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// MaxTabNumberLength bounds the staff identifier length.
const MaxTabNumberLength = 32

// MaxFullNameLength bounds an employee's full name length.
const MaxFullNameLength = 255

// TabNumber is an employee's unique staff/payroll identifier.
// It is immutable and compares by its normalized (trimmed) value.
type TabNumber struct {
	value string
}

// NewTabNumber validates and normalizes a raw tab number.
func NewTabNumber(raw string) (TabNumber, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return TabNumber{}, fmt.Errorf("tab number is empty")
	}
	if len(v) > MaxTabNumberLength {
		return TabNumber{}, fmt.Errorf("tab number exceeds %d characters", MaxTabNumberLength)
	}
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return TabNumber{}, fmt.Errorf("tab number contains invalid character %q", r)
		}
	}
	return TabNumber{value: v}, nil
}

func (t TabNumber) String() string { return t.value }

// IsZero reports whether the tab number is the uninitialized zero value.
func (t TabNumber) IsZero() bool { return t.value == "" }

// MarshalJSON renders the tab number as its string value.
func (t TabNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON parses and re-validates a tab number from JSON.
func (t *TabNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTabNumber(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DepartmentCode is a dot-segmented hierarchical identifier encoding a
// department's place in the org tree, e.g. "ROOT.3.2". It doubles as the
// natural key for department lookup and as the source for deriving missing
// intermediate departments.
type DepartmentCode struct {
	segments []string
}

// NewDepartmentCode validates a raw code string.
// Each dot-separated segment must be non-empty and consist of alphanumerics,
// dashes, and underscores, starting with an alphanumeric.
func NewDepartmentCode(raw string) (DepartmentCode, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return DepartmentCode{}, fmt.Errorf("department code is empty")
	}
	segments := strings.Split(v, ".")
	for _, seg := range segments {
		if err := validateCodeSegment(seg); err != nil {
			return DepartmentCode{}, fmt.Errorf("department code %q: %w", v, err)
		}
	}
	return DepartmentCode{segments: segments}, nil
}

func validateCodeSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty segment")
	}
	for i, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
			if i == 0 {
				return fmt.Errorf("segment %q starts with %q", seg, r)
			}
		default:
			return fmt.Errorf("segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

func (c DepartmentCode) String() string { return strings.Join(c.segments, ".") }

// MarshalJSON renders the code in its dotted form.
func (c DepartmentCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses and re-validates a dotted code from JSON.
func (c *DepartmentCode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewDepartmentCode(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsZero reports whether the code is the uninitialized zero value.
func (c DepartmentCode) IsZero() bool { return len(c.segments) == 0 }

// Level returns the depth of the department in the tree; roots are level 0.
func (c DepartmentCode) Level() int { return len(c.segments) - 1 }

// Parent returns the code with the last segment removed.
// The second return value is false for root codes.
func (c DepartmentCode) Parent() (DepartmentCode, bool) {
	if len(c.segments) <= 1 {
		return DepartmentCode{}, false
	}
	return DepartmentCode{segments: c.segments[:len(c.segments)-1]}, true
}

// IsChildOf reports whether other is a strict prefix of this code's segments.
func (c DepartmentCode) IsChildOf(other DepartmentCode) bool {
	if len(other.segments) >= len(c.segments) {
		return false
	}
	for i, seg := range other.segments {
		if c.segments[i] != seg {
			return false
		}
	}
	return true
}

// Child returns a new code with the given segment appended.
func (c DepartmentCode) Child(segment string) (DepartmentCode, error) {
	if err := validateCodeSegment(segment); err != nil {
		return DepartmentCode{}, err
	}
	segments := make([]string, 0, len(c.segments)+1)
	segments = append(segments, c.segments...)
	segments = append(segments, segment)
	return DepartmentCode{segments: segments}, nil
}

// Equal compares two codes by value.
func (c DepartmentCode) Equal(other DepartmentCode) bool {
	if len(c.segments) != len(other.segments) {
		return false
	}
	for i, seg := range c.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// PersonalInfo carries a person's full name and contact details.
// All fields are validated on construction; the value is immutable and
// compares by all three fields.
type PersonalInfo struct {
	FullName string
	Email    string
	Phone    string
}

// NewPersonalInfo validates name, email, and phone and returns the value object.
func NewPersonalInfo(fullName, email, phone string) (PersonalInfo, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return PersonalInfo{}, fmt.Errorf("full name is empty")
	}
	if len(name) > MaxFullNameLength {
		return PersonalInfo{}, fmt.Errorf("full name exceeds %d characters", MaxFullNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r) &&
			r != ' ' && r != '.' && r != '-' && r != '\'' {
			return PersonalInfo{}, fmt.Errorf("full name contains invalid character %q", r)
		}
	}

	addr := strings.TrimSpace(email)
	if addr == "" {
		return PersonalInfo{}, fmt.Errorf("email is empty")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return PersonalInfo{}, fmt.Errorf("invalid email %q", addr)
	}
	if !strings.Contains(strings.SplitN(addr, "@", 2)[1], ".") {
		return PersonalInfo{}, fmt.Errorf("invalid email %q: domain has no dot", addr)
	}

	digits := phoneDigits(phone)
	if len(digits) < 10 || len(digits) > 15 {
		return PersonalInfo{}, fmt.Errorf("phone must contain 10-15 digits, got %d", len(digits))
	}

	return PersonalInfo{FullName: name, Email: addr, Phone: digits}, nil
}

// phoneDigits strips common phone formatting and returns the bare digits.
// Returns an empty string if any character other than digits and the
// accepted separators is present.
func phoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-' || r == '(' || r == ')' || r == ' ' || r == '.':
			// formatting, ignored
		default:
			return ""
		}
	}
	return b.String()
}
