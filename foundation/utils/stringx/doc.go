// Package stringx provides small string helpers used across nsms.
package stringx
