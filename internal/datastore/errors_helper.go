// Package datastore provides error handling helpers for database operations
package datastore

import (
	"github.com/tmattila/artstore-go/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// notFoundError creates a not-found error for the given resource and key
func notFoundError(resource, key string) error {
	return errors.Newf("%s not found: %s", resource, key).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("resource", resource).
		Context("key", key).
		Build()
}

// conflictError creates a uniqueness conflict error
func conflictError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("datastore").
		Category(errors.CategoryConflict).
		Build()
}

// validationError creates a validation error for a rejected field value
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", value).
		Build()
}
