// Package prompt collects a document submission interactively, turning each
// answer into a form action on the store.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-docsubmit/pkg/fieldconfig"
	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

const (
	msgSameAsResidential = "Same as Residential Address?"
	msgAddDocument       = "Add another document?"
	msgRemoveDocument    = "Remove this document?"
)

// Option customises a Runner.
type Option func(*Runner)

// WithCatalogue replaces the bundled field catalogue.
func WithCatalogue(c *fieldconfig.Catalogue) Option {
	return func(r *Runner) {
		if c != nil {
			r.catalogue = c
		}
	}
}

// Runner walks the catalogue prompting for every field. Values already in the
// store are offered as defaults so a rejected submission can be corrected by
// running again.
type Runner struct {
	driver    PromptDriver
	store     *form.Store
	catalogue *fieldconfig.Catalogue
}

// NewRunner builds a Runner for store using driver.
func NewRunner(driver PromptDriver, store *form.Store, opts ...Option) (*Runner, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	if store == nil {
		return nil, errors.New("prompt: store is required")
	}
	r := &Runner{driver: driver, store: store}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.catalogue == nil {
		c, err := fieldconfig.Default()
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}
		r.catalogue = c
	}
	return r, nil
}

// Run prompts for every section in catalogue order.
func (r *Runner) Run(ctx context.Context) error {
	for _, section := range r.catalogue.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch section.Name {
		case form.SectionDocuments:
			err = r.runDocuments(ctx, section)
		case form.SectionPermanentAddress:
			err = r.runPermanent(ctx, section)
		default:
			err = r.runFields(ctx, section)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ShowErrors prints each invalid path with its messages.
func (r *Runner) ShowErrors(ctx context.Context, errs *validation.ErrorTree) error {
	if errs.Empty() {
		return nil
	}
	if err := r.driver.Info(ctx, "Please fix the following:"); err != nil {
		return err
	}
	for _, path := range errs.Paths() {
		line := fmt.Sprintf("  %s: %s", r.describe(path), strings.Join(errs.Messages(path), "; "))
		if err := r.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) describe(path string) string {
	parts := strings.Split(path, ".")
	section := form.Section(parts[0])
	title := string(section)
	if s, ok := r.catalogue.Section(section); ok && s.Title != "" {
		title = s.Title
	}
	switch len(parts) {
	case 2:
		return title + " / " + r.catalogue.Label(section, parts[1])
	case 3:
		return fmt.Sprintf("%s #%s / %s", title, parts[1], r.catalogue.Label(section, parts[2]))
	default:
		return title
	}
}

func (r *Runner) header(ctx context.Context, section fieldconfig.Section) error {
	if section.Title == "" {
		return nil
	}
	return r.driver.Info(ctx, section.Title)
}

func (r *Runner) runFields(ctx context.Context, section fieldconfig.Section) error {
	if err := r.header(ctx, section); err != nil {
		return err
	}
	for _, field := range section.Fields {
		current, _ := r.store.Snapshot().Value(section.Name, field.Key)
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   field.Label,
			Default:   current,
			Help:      helpFor(field),
			Validator: requiredValidator(field.Required),
		})
		if err != nil {
			return err
		}
		if err := r.store.DispatchContext(ctx, form.UpdateField{Section: section.Name, Field: field.Key, Value: value}); err != nil {
			return fmt.Errorf("prompt: %s.%s: %w", section.Name, field.Key, err)
		}
	}
	return nil
}

func (r *Runner) runPermanent(ctx context.Context, section fieldconfig.Section) error {
	mirrored := r.store.Snapshot().SameAsResidential
	same, err := r.driver.Confirm(ctx, ConfirmConfig{Message: msgSameAsResidential, Default: mirrored})
	if err != nil {
		return err
	}
	if same != mirrored {
		if err := r.store.DispatchContext(ctx, form.ToggleSameAsResidential{}); err != nil {
			return fmt.Errorf("prompt: toggle mirror: %w", err)
		}
	}
	if same {
		return nil
	}
	fields := make([]fieldconfig.Field, len(section.Fields))
	for i, field := range section.Fields {
		field.Required = field.Required || field.RequiredUnlessMirrored
		fields[i] = field
	}
	section.Fields = fields
	return r.runFields(ctx, section)
}

func (r *Runner) runDocuments(ctx context.Context, section fieldconfig.Section) error {
	if err := r.header(ctx, section); err != nil {
		return err
	}
	for index := 0; ; index++ {
		state := r.store.Snapshot()
		if index >= len(state.Documents) {
			return nil
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("Document %d", index+1)); err != nil {
			return err
		}
		if !state.IsLastDocument(index) {
			remove, err := r.driver.Confirm(ctx, ConfirmConfig{Message: msgRemoveDocument})
			if err != nil {
				return err
			}
			if remove {
				if err := r.store.DispatchContext(ctx, form.RemoveDocument{Index: index}); err != nil {
					return fmt.Errorf("prompt: remove document %d: %w", index, err)
				}
				index--
				continue
			}
		}
		if err := r.runDocument(ctx, section, index, state.Documents[index]); err != nil {
			return err
		}

		state = r.store.Snapshot()
		if !state.IsLastDocument(index) {
			continue
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: msgAddDocument})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := r.store.DispatchContext(ctx, form.AddNewDocument{}); err != nil {
			return fmt.Errorf("prompt: add document: %w", err)
		}
	}
}

func (r *Runner) runDocument(ctx context.Context, section fieldconfig.Section, index int, doc form.Document) error {
	for _, field := range section.Fields {
		var (
			value any
			err   error
		)
		switch field.Type {
		case fieldconfig.TypeSelect:
			value, err = r.askSelect(ctx, field, string(doc.FileType))
		case fieldconfig.TypeFile:
			attachment, ferr := r.askFile(ctx, field, doc.File)
			if ferr != nil {
				return ferr
			}
			if attachment == nil {
				continue
			}
			value = attachment
		default:
			value, err = r.driver.Input(ctx, InputConfig{
				Message:   field.Label,
				Default:   doc.FileName,
				Validator: requiredValidator(field.Required),
			})
		}
		if err != nil {
			return err
		}
		if err := r.store.DispatchContext(ctx, form.UpdateDocument{Index: index, Field: field.Key, Value: value}); err != nil {
			return fmt.Errorf("prompt: documents.%d.%s: %w", index, field.Key, err)
		}
	}
	return nil
}

func (r *Runner) askSelect(ctx context.Context, field fieldconfig.Field, current string) (string, error) {
	options := field.Options
	if len(options) == 0 {
		for _, ft := range form.FileTypes() {
			options = append(options, string(ft))
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      options,
		DefaultIndex: indexOf(options, current),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("prompt: %s: selection %d out of range", field.Key, idx)
	}
	return options[idx], nil
}

// askFile returns a nil attachment when the user keeps the existing file by
// leaving the path blank.
func (r *Runner) askFile(ctx context.Context, field fieldconfig.Field, current *form.Attachment) (*form.Attachment, error) {
	help := "Path to the file on disk"
	if current != nil {
		help = fmt.Sprintf("Leave blank to keep %s", current.Name())
	}
	path, err := r.driver.Input(ctx, InputConfig{
		Message:   field.Label,
		Help:      help,
		Validator: fileValidator(field.Required && current == nil),
	})
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	attachment, err := form.AttachmentFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return attachment, nil
}

func helpFor(field fieldconfig.Field) string {
	if field.Type == fieldconfig.TypeDate {
		return "YYYY-MM-DD"
	}
	return ""
}

func requiredValidator(required bool) func(string) error {
	if !required {
		return nil
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New("this field is required")
		}
		return nil
	}
}

func fileValidator(required bool) func(string) error {
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if required {
				return errors.New("a file is required")
			}
			return nil
		}
		info, err := os.Stat(value)
		if err != nil {
			return fmt.Errorf("cannot read %s", value)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", value)
		}
		return nil
	}
}
