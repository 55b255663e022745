// Package errors provides the classified error type shared by every codify-docs package.
//
// A ClassifiedError carries a category (config, validation, git, ...), a severity,
// a retry hint and a small context map. Errors are built through the fluent
// ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryValidation, "nav entry has no link").
//		WithContext("path", "themeConfig.nav[2]").
//		Build()
//
// CLIErrorAdapter turns a classified error into an exit code and a user-facing line.
package errors
