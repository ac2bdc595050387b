// Package errors provides the typed error taxonomy shared by spm's packages.
// Every failure a user can act on carries a Kind and optional remediation steps.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies what went wrong
type Kind int

const (
	// Unknown is the zero Kind, used for untyped errors
	Unknown Kind = iota
	MissingManifest
	MalformedManifest
	BrokenPackage
	AlreadyInstalled
	SetupScriptMissing
	UninstallScriptMissing
	DependencyNotFound
	DependencySlotExists
	NotALibrary
	VersionNotFound
	GitTransport
	AmbiguousSelection
	PackageNotFound
	AmbiguousName
	InvalidDependencyURL
	InvalidInterpreter
	ScriptFailed
	InstallRootMissing
	Locked
	InvalidSource
)

var kindNames = map[Kind]string{
	Unknown:                "Error",
	MissingManifest:        "Missing Manifest",
	MalformedManifest:      "Malformed Manifest",
	BrokenPackage:          "Broken Package",
	AlreadyInstalled:       "Already Installed",
	SetupScriptMissing:     "Setup Script Missing",
	UninstallScriptMissing: "Uninstall Script Missing",
	DependencyNotFound:     "Dependency Not Found",
	DependencySlotExists:   "Dependency Exists",
	NotALibrary:            "Not A Library",
	VersionNotFound:        "Version Not Found",
	GitTransport:           "Git Error",
	AmbiguousSelection:     "Invalid Selection",
	PackageNotFound:        "Package Not Found",
	AmbiguousName:          "Ambiguous Name",
	InvalidDependencyURL:   "Invalid Dependency URL",
	InvalidInterpreter:     "Invalid Interpreter",
	ScriptFailed:           "Script Failed",
	InstallRootMissing:     "Install Root Missing",
	Locked:                 "Package Locked",
	InvalidSource:          "Invalid Source",
}

// String returns a human-readable name for the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// Error is a categorized error with remediation guidance
type Error struct {
	// Kind classifies the failure
	Kind Kind
	// Message describes what went wrong
	Message string
	// Remediation lists actionable steps to resolve the error
	Remediation []string
	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// WithRemediation appends remediation steps and returns the same error
func (e *Error) WithRemediation(steps ...string) *Error {
	e.Remediation = append(e.Remediation, steps...)
	return e
}

// New creates an error of the given kind
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind around a cause
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// KindOf returns the kind of the outermost typed error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether any typed error in err's chain has the given kind
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
