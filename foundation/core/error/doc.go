// Package error provides coded, wrappable errors for nsms.
//
// Package: error
// Title: nsms Error Handling
// Description: Structured errors carrying a code, a severity, free-form
//              details and an optional localized reply key. Command handlers
//              use the reply key to answer the sender of a malformed SMS.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation
//
// Usage:
//
//	import nsmserror "github.com/msto63/nsms/foundation/core/error"
//
//	err := nsmserror.MissingField("birth_date", "register.missing_birth_date")
//
//	if nsmserror.HasCode(err, nsmserror.CodeMissingField) {
//		slug := nsmserror.MessageKeyOf(err)
//		// reply with the localized text for slug
//	}
//
//	wrapped := nsmserror.Wrap(dbErr, "failed to save message").
//		WithCode(nsmserror.CodeDatabaseError).
//		WithOperation("message.save")
package error
