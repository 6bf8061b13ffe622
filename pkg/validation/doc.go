// Package validation decides whether a form snapshot can be submitted.
//
// Rules are plain values: a predicate plus the Kind and message it produces,
// bound to a dotted path such as "personalInfo.email" or
// "documents.1.fileType". Schema.Validate always evaluates every rule so the
// caller can show all problems at once, and it reports failures through the
// returned Result rather than an error.
package validation
