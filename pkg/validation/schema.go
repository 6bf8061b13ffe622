package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-docsubmit/pkg/form"
)

// Default thresholds and messages.
const (
	DefaultMinimumAge       = 18
	DefaultMinimumDocuments = 2

	MsgFirstNameRequired  = "First Name is required"
	MsgLastNameRequired   = "Last Name is required"
	MsgInvalidEmail       = "Invalid email address"
	MsgUnderage           = "You must be at least 18 years old"
	MsgResidentialStreet1 = "Residential Street 1 is required"
	MsgPermanentStreet1   = "Permanent Street 1 is required"
	MsgFileNameRequired   = "File Name is required"
	MsgFileTypeInvalid    = "File Type must be image or pdf"
	MsgFileRequired       = "File is required"
	MsgTooFewDocuments    = "At least 2 documents are required"
)

// Verdict is the outcome of validating a snapshot.
type Verdict string

const (
	Accepted Verdict = "accepted"
	Rejected Verdict = "rejected"
)

// Result carries the verdict and, when rejected, the complete error tree.
type Result struct {
	Verdict Verdict
	Errors  *ErrorTree
}

// Accepted reports whether the snapshot passed every rule.
func (r Result) Accepted() bool {
	return r.Verdict == Accepted
}

// Err returns nil for accepted results and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Accepted() {
		return nil
	}
	return &ValidationError{Tree: r.Errors}
}

// ValidationError exposes a rejected result as an error value for callers that
// prefer error plumbing.
type ValidationError struct {
	Tree *ErrorTree
}

func (e *ValidationError) Error() string {
	paths := e.Tree.Paths()
	if len(paths) == 0 {
		return "validation: submission rejected"
	}
	return fmt.Sprintf("validation: %d invalid field(s): %s", len(paths), strings.Join(paths, ", "))
}

// Option configures the default schema.
type Option func(*config)

type config struct {
	now              func() time.Time
	minimumAge       int
	minimumDocuments int
	strictPermanent  bool
	extra            []Rule
}

// WithClock overrides the clock used for age checks.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMinimumAge overrides the minimum applicant age in years.
func WithMinimumAge(years int) Option {
	return func(c *config) {
		if years > 0 {
			c.minimumAge = years
		}
	}
}

// WithMinimumDocuments overrides how many documents a submission needs.
func WithMinimumDocuments(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minimumDocuments = n
		}
	}
}

// WithPermanentAddressRequired makes permanentAddress.street1 required unless
// the applicant chose to mirror the residential address. The default schema
// leaves the permanent address optional.
func WithPermanentAddressRequired() Option {
	return func(c *config) {
		c.strictPermanent = true
	}
}

// WithRules appends custom rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(c *config) {
		c.extra = append(c.extra, rules...)
	}
}

// Schema is an ordered set of rules evaluated together.
type Schema struct {
	rules []Rule
}

// NewSchema builds a schema from explicit rules only.
func NewSchema(rules ...Rule) *Schema {
	return &Schema{rules: append([]Rule(nil), rules...)}
}

// New builds the document submission schema.
func New(opts ...Option) *Schema {
	cfg := config{
		now:              time.Now,
		minimumAge:       DefaultMinimumAge,
		minimumDocuments: DefaultMinimumDocuments,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	ageMessage := MsgUnderage
	if cfg.minimumAge != DefaultMinimumAge {
		ageMessage = fmt.Sprintf("You must be at least %d years old", cfg.minimumAge)
	}
	docsMessage := MsgTooFewDocuments
	if cfg.minimumDocuments != DefaultMinimumDocuments {
		docsMessage = fmt.Sprintf("At least %d documents are required", cfg.minimumDocuments)
	}

	rules := []Rule{
		Field(form.SectionPersonalInfo, form.FieldFirstName, Required(MsgFirstNameRequired)),
		Field(form.SectionPersonalInfo, form.FieldLastName, Required(MsgLastNameRequired)),
		Field(form.SectionPersonalInfo, form.FieldEmail, Email(MsgInvalidEmail)),
		Field(form.SectionPersonalInfo, form.FieldDOB, MinimumAge(cfg.minimumAge, cfg.now, ageMessage)),
		Field(form.SectionResidentialAddress, form.FieldStreet1, Required(MsgResidentialStreet1)),
		EachDocument(
			DocumentCheck{
				Field: form.FieldFileName, Kind: KindRequired, Message: MsgFileNameRequired,
				Valid: func(d form.Document) bool { return d.FileName != "" },
			},
			DocumentCheck{
				Field: form.FieldFileType, Kind: KindInvalidFormat, Message: MsgFileTypeInvalid,
				Valid: func(d form.Document) bool { return d.FileType.Valid() },
			},
			DocumentCheck{
				Field: form.FieldFile, Kind: KindRequired, Message: MsgFileRequired,
				Valid: func(d form.Document) bool { return d.File != nil },
			},
		),
		MinDocuments(cfg.minimumDocuments, docsMessage),
	}
	if cfg.strictPermanent {
		rules = append(rules, When(
			func(s form.State) bool { return !s.SameAsResidential },
			Field(form.SectionPermanentAddress, form.FieldStreet1, Required(MsgPermanentStreet1)),
		))
	}
	rules = append(rules, cfg.extra...)

	return &Schema{rules: rules}
}

// Validate evaluates every rule against state and returns the verdict. It
// never panics on well-typed input and performs no I/O.
func (s *Schema) Validate(state form.State) Result {
	tree := NewErrorTree()
	if s != nil {
		snapshot := state.Clone()
		for _, rule := range s.rules {
			if rule == nil {
				continue
			}
			rule.Apply(snapshot, tree)
		}
	}
	if tree.Empty() {
		return Result{Verdict: Accepted}
	}
	return Result{Verdict: Rejected, Errors: tree}
}

// Validate runs the default schema.
func Validate(state form.State, opts ...Option) Result {
	return New(opts...).Validate(state)
}
