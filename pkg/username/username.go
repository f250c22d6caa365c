// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Package username provides canonicalization helpers for staff usernames.
//
// # Invariant
//
// Usernames are unique case-insensitively and stored trimmed. Every lookup
// and uniqueness check must compare the same canonical form, so all layers
// (service, storage, tests) go through this package instead of ad hoc
// strings.ToLower calls.
package username

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Normalize returns the storage form of a submitted username: surrounding
// whitespace removed and Unicode NFC-composed. Original letter case is kept —
// display preserves what the administrator typed.
func Normalize(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Fold returns the comparison form used for case-insensitive equality:
// the normalized username passed through Unicode case folding.
//
// Folding (rather than ToLower) handles scripts where lowercasing is not a
// stable equivalence, e.g. dotted/dotless I.
func Fold(raw string) string {
	return folder.String(Normalize(raw))
}

// Equal reports whether two submitted usernames identify the same account.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
