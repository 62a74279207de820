package orgimport

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "duplicate key",
			err:      errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode: "DB001",
		},
		{
			name:     "foreign key",
			err:      errors.New("violates foreign key constraint"),
			wantCode: "DB002",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: "DB003",
		},
		{
			name:     "timeout",
			err:      errors.New("context deadline exceeded (timeout)"),
			wantCode: "DB004",
		},
		{
			name:     "missing columns",
			err:      &ParseError{Reason: "missing required columns: email, phone"},
			wantCode: "IN001",
		},
		{
			name:     "header not found",
			err:      &ParseError{Reason: "header not found; required columns: full_name"},
			wantCode: "IN001",
		},
		{
			name:     "invalid csv",
			err:      &ParseError{Reason: "invalid csv: parse error on line 3"},
			wantCode: "IN002",
		},
		{
			name:     "empty file",
			err:      &ParseError{Reason: "empty file"},
			wantCode: "IN003",
		},
		{
			name:     "size limit",
			err:      &ParseError{Reason: "input exceeds 25MB limit"},
			wantCode: "IN004",
		},
		{
			name:     "circular managers",
			err:      RowError{Row: 2, Message: `circular manager chain involving tab number "T001"`},
			wantCode: "IMP001",
		},
		{
			name:     "unknown manager",
			err:      RowError{Row: 2, Message: `manager with tab number "T900" not found`},
			wantCode: "IMP002",
		},
		{
			name:     "duplicate tab number",
			err:      RowError{Row: 2, Message: `duplicate tab number "T001" (first used in row 1)`},
			wantCode: "IMP003",
		},
		{
			name:     "limiter rejection",
			err:      ErrTooManyImports,
			wantCode: "IMP004",
		},
		{
			name:     "unknown error falls back",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
		{
			name:     "case insensitive",
			err:      errors.New("DUPLICATE KEY value violates"),
			wantCode: "DB001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v) code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Error("Message should never be empty")
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	got := MapError(nil)
	if got.Code != "ERR000" {
		t.Errorf("MapError(nil) code = %q, want ERR000", got.Code)
	}
}

func TestUserMessageString(t *testing.T) {
	msg := MapError(errors.New("connection refused"))
	want := "[DB003] Unable to connect to the database"
	if got := msg.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
