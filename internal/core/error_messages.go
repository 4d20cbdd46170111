package core

// error_messages.go maps technical errors to user-facing messages with codes
// that support staff can look up.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: a record with this Service ID already exists
//	DB002 - Unique constraint: a value must be unique but already exists
//	DB003 - Foreign key: referenced record does not exist
//	DB004 - Connection refused: unable to connect to database
//	DB005 - Connection reset: database connection was interrupted
//	DB006 - Timeout: operation timed out
//	DB007 - Deadlock: database was busy with conflicting operations
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date
//	VAL002 - Invalid number
//	VAL003 - Required field not mapped (import blocked until remapped)
//	VAL004 - No valid rows (every row is missing a required value)
//	VAL005 - Required field empty on a row
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large for the upload limit
//	FILE002 - Unsupported file format (only .csv, .xlsx, .xls)
//	FILE003 - Workbook or text could not be decoded
//	FILE004 - No file in the request
//	FILE005 - Empty file (no header row)
//	FILE006 - Duplicate column header
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Mapping suggestion unavailable (informational)
//	IMP002 - Too many imports in progress
//	IMP003 - Import session not found or expired
//	IMP004 - Request cancelled
//	IMP005 - Request timed out
//	IMP006 - Action not allowed in the current import step
//
// # Catalog and Report Errors
//
//	CAT001 - Unknown import type
//	RPT001 - No reports matched the export filters
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this Service ID already exists",
			Action:  "Remove or change the duplicate rows and import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate key values",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Import the matching customers before their runs",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL005)
	// =========================================================================
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD, DD/MM/YYYY, or 15 Jan 2024",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Remove currency symbols and use standard decimal format",
			Code:    "VAL002",
		},
	},
	{
		pattern: "missing required field mapping",
		msg: UserMessage{
			Message: "Required fields are not mapped to any column",
			Action:  "Map a column to every required field before importing",
			Code:    "VAL003",
		},
	},
	{
		pattern: "no valid rows",
		msg: UserMessage{
			Message: "No rows could be imported",
			Action:  "Every row is missing a required value; check the mapping or the file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "missing required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL005",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv, .xlsx or .xls file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "cannot decode",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Open the file in a spreadsheet program and save it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "duplicate header",
		msg: UserMessage{
			Message: "Two columns have the same header",
			Action:  "Rename the repeated column and upload again",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP006)
	// =========================================================================
	{
		pattern: "mapping suggestion unavailable",
		msg: UserMessage{
			Message: "Automatic column matching is unavailable",
			Action:  "Columns were matched by name; review the mapping before importing",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "import session not found",
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The import may have expired. Please upload the file again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "IMP005",
		},
	},
	{
		pattern: "invalid transition",
		msg: UserMessage{
			Message: "That action is not available at this step",
			Action:  "Finish the current step or start a new import",
			Code:    "IMP006",
		},
	},

	// =========================================================================
	// Catalog and Report Errors
	// =========================================================================
	{
		pattern: "unknown entity",
		msg: UserMessage{
			Message: "Unknown import type",
			Action:  "Choose customers or runs",
			Code:    "CAT001",
		},
	},
	{
		pattern: "no reports to export",
		msg: UserMessage{
			Message: "No reports to export",
			Action:  "Clear the filters or widen the search",
			Code:    "RPT001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback with code ERR000 is returned.
//
//	msg := MapError(&InsertError{Err: errors.New("duplicate key value")})
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
