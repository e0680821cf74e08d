// Package log provides structured logging for nsms.
//
// Package: log
// Title: nsms Structured Logging
// Description: Leveled, structured logging with JSON, text, console and
//              logfmt output. Loggers are narrowed per message with
//              WithMessageID, WithBackend and WithIdentity so every line
//              written while an SMS is handled carries its context.
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
//	import nsmslog "github.com/msto63/nsms/foundation/core/log"
//
//	logger := nsmslog.NewWithConfig(nsmslog.Config{
//		Level:  nsmslog.LevelInfo,
//		Format: nsmslog.FormatText,
//		Name:   "router",
//	})
//
//	msgLog := logger.WithBackend("tester").WithMessageID(id)
//	msgLog.Audit("incoming", nsmslog.Field("text", text))
//
//	timer := msgLog.StartTimer("dispatch")
//	defer timer.Stop()
package log
