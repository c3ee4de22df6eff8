// Package validation provides shared configuration validation helpers used by
// the repgo packages. All validators return *errors.ValidationError values
// that unwrap to errors.ErrInvalidConfiguration.
package validation
