package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"paper_summaries_go_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func newPaperValidator() *validator.Validate {
	v := validator.New()

	// Report JSON paths (summary.takeaway) rather than Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})

	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("failed to register category validation: %v", err))
	}
	return v
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// normalizePaper trims every text field in place.
func normalizePaper(p *models.Paper) {
	p.Title = strings.TrimSpace(p.Title)
	for i, author := range p.Authors {
		p.Authors[i] = strings.TrimSpace(author)
	}
	p.Abstract = strings.TrimSpace(p.Abstract)
	p.Category = models.Category(strings.TrimSpace(string(p.Category)))
	p.Summary.Problem = strings.TrimSpace(p.Summary.Problem)
	p.Summary.Method = strings.TrimSpace(p.Summary.Method)
	p.Summary.Dataset = strings.TrimSpace(p.Summary.Dataset)
	p.Summary.KeyResults = strings.TrimSpace(p.Summary.KeyResults)
	p.Summary.Takeaway = strings.TrimSpace(p.Summary.Takeaway)
}

// validatePaper returns nil or an error listing every offending field.
func (s *PaperService) validatePaper(p *models.Paper) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	problems := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		problems = append(problems, describeFieldError(fe))
	}
	return errors.New(strings.Join(problems, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must contain at least one entry"
	case "category":
		return fmt.Sprintf("%s must be one of %s (got %q)", field, categoryList(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
