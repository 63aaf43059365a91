// Package failure defines the closed set of errors a breakdown pipeline run
// can produce. Every stage returns one of these; nothing else crosses a stage
// boundary.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates pipeline errors.
type Kind string

const (
	KindInvalidParameterCount   Kind = "InvalidParameterCount"
	KindInvalidDirectiveType    Kind = "InvalidDirectiveType"
	KindInvalidLayerType        Kind = "InvalidLayerType"
	KindConfigurationNotFound   Kind = "ConfigurationNotFound"
	KindPatternNotDefined       Kind = "PatternNotDefined"
	KindConflictingOptions      Kind = "ConflictingOptions"
	KindMissingRequired         Kind = "MissingRequired"
	KindFileNotFound            Kind = "FileNotFound"
	KindReservedVariableName    Kind = "ReservedVariableName"
	KindEmptyVariableValue      Kind = "EmptyVariableValue"
	KindPromptGeneration        Kind = "PromptGenerationError"
	KindConfigurationValidation Kind = "ConfigurationValidationError"
	KindVariableProcessing      Kind = "VariableProcessingError"
)

// Kinds lists every Kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindInvalidParameterCount,
		KindInvalidDirectiveType,
		KindInvalidLayerType,
		KindConfigurationNotFound,
		KindPatternNotDefined,
		KindConflictingOptions,
		KindMissingRequired,
		KindFileNotFound,
		KindReservedVariableName,
		KindEmptyVariableValue,
		KindPromptGeneration,
		KindConfigurationValidation,
		KindVariableProcessing,
	}
}

// Error is implemented only by the variant types in this package.
type Error interface {
	error
	Kind() Kind
	sealed()
}

// As returns the pipeline error wrapped in err, if any.
func As(err error) (Error, bool) {
	var fe Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind()
	}
	return ""
}

// InvalidParameterCount reports the wrong number of positional words.
type InvalidParameterCount struct {
	Received int
	Expected int
}

func (e *InvalidParameterCount) Error() string {
	return fmt.Sprintf("expected %d parameters (directive and layer), received %d", e.Expected, e.Received)
}
func (e *InvalidParameterCount) Kind() Kind { return KindInvalidParameterCount }
func (*InvalidParameterCount) sealed() {}

// InvalidDirectiveType reports a directive outside the active pattern set.
type InvalidDirectiveType struct {
	Value      string
	ValidTypes []string
}

func (e *InvalidDirectiveType) Error() string {
	return fmt.Sprintf("invalid directive %q (valid: %s)", e.Value, strings.Join(e.ValidTypes, ", "))
}
func (e *InvalidDirectiveType) Kind() Kind { return KindInvalidDirectiveType }
func (*InvalidDirectiveType) sealed() {}

// InvalidLayerType reports a layer outside the active pattern set.
type InvalidLayerType struct {
	Value      string
	ValidTypes []string
	// Reason is set when the layer itself matched but the combination was rejected.
	Reason string
}

func (e *InvalidLayerType) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid layer %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid layer %q (valid: %s)", e.Value, strings.Join(e.ValidTypes, ", "))
}
func (e *InvalidLayerType) Kind() Kind { return KindInvalidLayerType }
func (*InvalidLayerType) sealed() {}

// ConfigurationNotFound reports a missing profile or configuration file.
type ConfigurationNotFound struct {
	Profile string
	Path    string
}

func (e *ConfigurationNotFound) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("configuration not found at %s", e.Path)
	}
	if e.Path != "" {
		return fmt.Sprintf("configuration for profile %q not found (looked in %s)", e.Profile, e.Path)
	}
	return fmt.Sprintf("configuration for profile %q not found", e.Profile)
}
func (e *ConfigurationNotFound) Kind() Kind { return KindConfigurationNotFound }
func (*ConfigurationNotFound) sealed() {}

// PatternNotDefined reports a profile without patterns for a parameter.
type PatternNotDefined struct {
	Profile   string
	Parameter string
}

func (e *PatternNotDefined) Error() string {
	return fmt.Sprintf("profile %q defines no %s patterns (expected profiles.%s.two.%s.patterns)",
		e.Profile, e.Parameter, e.Profile, e.Parameter)
}
func (e *PatternNotDefined) Kind() Kind { return KindPatternNotDefined }
func (*PatternNotDefined) sealed() {}

// ConflictingOptions reports mutually exclusive options used together.
type ConflictingOptions struct {
	Options []string
}

func (e *ConflictingOptions) Error() string {
	return fmt.Sprintf("options cannot be combined: %s", strings.Join(e.Options, ", "))
}
func (e *ConflictingOptions) Kind() Kind { return KindConflictingOptions }
func (*ConflictingOptions) sealed() {}

// MissingRequired reports a required option or input that was not supplied.
type MissingRequired struct {
	Field string
	Hint  string
}

func (e *MissingRequired) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("missing required %s: %s", e.Field, e.Hint)
	}
	return fmt.Sprintf("missing required %s", e.Field)
}
func (e *MissingRequired) Kind() Kind { return KindMissingRequired }
func (*MissingRequired) sealed() {}

// FileNotFound reports an input file that does not exist or is not a regular file.
type FileNotFound struct {
	Path  string
	Cause error
}

func (e *FileNotFound) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("file not found: %s (%v)", e.Path, e.Cause)
	}
	return fmt.Sprintf("file not found: %s", e.Path)
}
func (e *FileNotFound) Unwrap() error { return e.Cause }
func (e *FileNotFound) Kind() Kind { return KindFileNotFound }
func (*FileNotFound) sealed() {}

// ReservedVariableName reports a custom variable shadowing a standard one.
type ReservedVariableName struct {
	Key string
}

func (e *ReservedVariableName) Error() string {
	return fmt.Sprintf("variable %q uses a reserved name", e.Key)
}
func (e *ReservedVariableName) Kind() Kind { return KindReservedVariableName }
func (*ReservedVariableName) sealed() {}

// EmptyVariableValue reports a custom variable with an empty value.
type EmptyVariableValue struct {
	Key string
}

func (e *EmptyVariableValue) Error() string {
	return fmt.Sprintf("variable %q has an empty value", e.Key)
}
func (e *EmptyVariableValue) Kind() Kind { return KindEmptyVariableValue }
func (*EmptyVariableValue) sealed() {}

// PromptGenerationError reports a template that could not be located or read.
type PromptGenerationError struct {
	Reason    string
	Attempted []string
	Cause     error
}

func (e *PromptGenerationError) Error() string {
	msg := "prompt generation failed: " + e.Reason
	if len(e.Attempted) > 0 {
		msg += " (tried " + strings.Join(e.Attempted, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}
func (e *PromptGenerationError) Unwrap() error { return e.Cause }
func (e *PromptGenerationError) Kind() Kind { return KindPromptGeneration }
func (*PromptGenerationError) sealed() {}

// ConfigurationValidationError reports a configuration that failed to parse or validate.
type ConfigurationValidationError struct {
	Path   string
	Field  string
	Reason string
	Cause  error
}

func (e *ConfigurationValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Path != "" {
		b.WriteString(" in " + e.Path)
	}
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}
func (e *ConfigurationValidationError) Unwrap() error { return e.Cause }
func (e *ConfigurationValidationError) Kind() Kind { return KindConfigurationValidation }
func (*ConfigurationValidationError) sealed() {}

// VariableProcessingError carries every violation found while assembling variables.
type VariableProcessingError struct {
	Errors []Error
}

func (e *VariableProcessingError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d variable error(s): %s", len(e.Errors), strings.Join(parts, "; "))
}
func (e *VariableProcessingError) Kind() Kind { return KindVariableProcessing }
func (*VariableProcessingError) sealed() {}

// Details flattens the fields of a pipeline error for structured output
// (JSON responses, log attributes).
func Details(err Error) map[string]any {
	switch e := err.(type) {
	case *InvalidParameterCount:
		return map[string]any{"received": e.Received, "expected": e.Expected}
	case *InvalidDirectiveType:
		return map[string]any{"value": e.Value, "valid_types": e.ValidTypes}
	case *InvalidLayerType:
		d := map[string]any{"value": e.Value, "valid_types": e.ValidTypes}
		if e.Reason != "" {
			d["reason"] = e.Reason
		}
		return d
	case *ConfigurationNotFound:
		return map[string]any{"profile": e.Profile, "path": e.Path}
	case *PatternNotDefined:
		return map[string]any{"profile": e.Profile, "parameter": e.Parameter}
	case *ConflictingOptions:
		return map[string]any{"options": e.Options}
	case *MissingRequired:
		return map[string]any{"field": e.Field, "hint": e.Hint}
	case *FileNotFound:
		return map[string]any{"path": e.Path}
	case *ReservedVariableName:
		return map[string]any{"key": e.Key}
	case *EmptyVariableValue:
		return map[string]any{"key": e.Key}
	case *PromptGenerationError:
		return map[string]any{"reason": e.Reason, "attempted": e.Attempted}
	case *ConfigurationValidationError:
		return map[string]any{"path": e.Path, "field": e.Field, "reason": e.Reason}
	case *VariableProcessingError:
		items := make([]map[string]any, 0, len(e.Errors))
		for _, inner := range e.Errors {
			items = append(items, map[string]any{
				"kind":    string(inner.Kind()),
				"message": inner.Error(),
				"details": Details(inner),
			})
		}
		return map[string]any{"errors": items}
	default:
		return map[string]any{}
	}
}
