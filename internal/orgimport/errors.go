// Package orgimport error mapping.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// Database errors (DB001-DB099):
//
//	DB001 - Duplicate key: a record with this key already exists
//	DB002 - Foreign key: referenced record does not exist
//	DB003 - Connection refused: unable to connect to database
//	DB004 - Timeout: operation timed out
//
// Input errors (IN001-IN099):
//
//	IN001 - Missing columns: required columns are absent from the header
//	IN002 - Invalid file: input is not a valid CSV or XLSX file
//	IN003 - Empty file: the uploaded file has no data rows
//	IN004 - File too large: input exceeds the size limit
//
// Import errors (IMP001-IMP099):
//
//	IMP001 - Circular managers: manager references form a cycle
//	IMP002 - Unknown manager: a manager reference cannot be resolved
//	IMP003 - Duplicate tab number: the same tab number appears twice
//	IMP004 - Too many imports: concurrent import limit reached
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones. ERR000 is the
// fallback.
package orgimport

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference code
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Check the error list for the conflicting rows",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced record does not exist",
			Action:  "Ensure referenced departments and managers exist",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB004",
		},
	},
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "Required columns are missing from the file header",
			Action:  "Check that the header names every required column",
			Code:    "IN001",
		},
	},
	{
		pattern: "header not found",
		msg: UserMessage{
			Message: "No header row was found in the file",
			Action:  "Check that the header names every required column",
			Code:    "IN001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent quoting",
			Code:    "IN002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "The file is not a valid Excel workbook",
			Action:  "Re-export the file as .xlsx or .csv and try again",
			Code:    "IN002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no data rows",
			Action:  "Upload a file with at least one data row",
			Code:    "IN003",
		},
	},
	{
		pattern: "exceeds",
		msg: UserMessage{
			Message: "The file exceeds the size limit",
			Action:  "Split the file into smaller parts",
			Code:    "IN004",
		},
	},
	{
		pattern: "circular",
		msg: UserMessage{
			Message: "Manager references form a circular chain",
			Action:  "Break the cycle in the manager column and re-import",
			Code:    "IMP001",
		},
	},
	{
		pattern: "manager with tab number",
		msg: UserMessage{
			Message: "A manager reference could not be resolved",
			Action:  "Ensure the manager's row is present or already imported",
			Code:    "IMP002",
		},
	},
	{
		pattern: "duplicate tab number",
		msg: UserMessage{
			Message: "The same tab number appears more than once",
			Action:  "Remove the duplicate rows and re-import",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Another import is already running",
			Action:  "Wait for it to finish and try again",
			Code:    "IMP004",
		},
	},
}

// MapError translates a technical error into a user-facing message with a
// support code. Unmatched errors fall back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Unknown error", Code: "ERR000"}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// String renders the message with its code for logs.
func (m UserMessage) String() string {
	return fmt.Sprintf("[%s] %s", m.Code, m.Message)
}
