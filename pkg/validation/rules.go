package validation

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-docsubmit/pkg/form"
)

// Rule inspects a snapshot and records any failures in errs. Rules must not
// stop at the first failure and must not touch anything but errs.
type Rule interface {
	Apply(state form.State, errs *ErrorTree)
}

// RuleFunc adapts a function into a Rule.
type RuleFunc func(state form.State, errs *ErrorTree)

// Apply delegates to the underlying function.
func (fn RuleFunc) Apply(state form.State, errs *ErrorTree) {
	fn(state, errs)
}

// Check pairs a predicate over a text value with the issue it produces.
type Check struct {
	Kind    Kind
	Message string
	Valid   func(value string) bool
}

// DocumentCheck pairs a predicate over one document with the field it blames.
type DocumentCheck struct {
	Field   string
	Kind    Kind
	Message string
	Valid   func(doc form.Document) bool
}

// Field validates section/field against every check, recording each failure
// under "section.field".
func Field(section form.Section, field string, checks ...Check) Rule {
	path := joinPath(string(section), field)
	return RuleFunc(func(state form.State, errs *ErrorTree) {
		value, _ := state.Value(section, field)
		for _, check := range checks {
			if check.Valid == nil || check.Valid(value) {
				continue
			}
			errs.Add(path, Issue{Kind: check.Kind, Message: check.Message})
		}
	})
}

// EachDocument applies checks to every document, recording failures under
// "documents.<index>.<field>".
func EachDocument(checks ...DocumentCheck) Rule {
	return RuleFunc(func(state form.State, errs *ErrorTree) {
		for i, doc := range state.Documents {
			prefix := joinPath(string(form.SectionDocuments), strconv.Itoa(i))
			for _, check := range checks {
				if check.Valid == nil || check.Valid(doc) {
					continue
				}
				errs.Add(joinPath(prefix, check.Field), Issue{Kind: check.Kind, Message: check.Message})
			}
		}
	})
}

// MinDocuments fails the documents collection when it holds fewer than n
// entries.
func MinDocuments(n int, message string) Rule {
	return RuleFunc(func(state form.State, errs *ErrorTree) {
		if len(state.Documents) < n {
			errs.Add(string(form.SectionDocuments), Issue{Kind: KindTooFew, Message: message})
		}
	})
}

// When runs rule only if cond holds for the snapshot.
func When(cond func(form.State) bool, rule Rule) Rule {
	return RuleFunc(func(state form.State, errs *ErrorTree) {
		if cond != nil && cond(state) && rule != nil {
			rule.Apply(state, errs)
		}
	})
}

// Required fails empty values. Whitespace is not trimmed: a single space is a
// value, as it is for the front-end that collected it.
func Required(message string) Check {
	return Check{
		Kind:    KindRequired,
		Message: message,
		Valid:   func(value string) bool { return value != "" },
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Email fails values that are not syntactically valid e-mail addresses.
func Email(message string) Check {
	return Check{
		Kind:    KindInvalidFormat,
		Message: message,
		Valid: func(value string) bool {
			if value == "" {
				return false
			}
			return emailValidator().Var(value, "email") == nil
		},
	}
}

// MinimumAge fails dates of birth whose year is fewer than years before the
// clock's current year. Only years are compared, so an applicant whose
// birthday has not happened yet this year is counted one year older.
// Unparseable dates fail the same way.
func MinimumAge(years int, now func() time.Time, message string) Check {
	return Check{
		Kind:    KindBusinessRule,
		Message: message,
		Valid: func(value string) bool {
			birth, ok := parseDate(value)
			if !ok {
				return false
			}
			return now().Year()-birth.Year() >= years
		},
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
