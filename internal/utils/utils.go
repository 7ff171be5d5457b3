package utils

import (
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All email comparisons in the system run on the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsDuplicateKey reports whether err is a MongoDB duplicate-key error
// (unique index violation, code 11000).
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
