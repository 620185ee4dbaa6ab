package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Verifier checks that params fit the requested pagination kind and
// normalises them
type Verifier interface {
	// Verify returns the normalised params and their raw view, or an error
	// wrapping ErrInvalidParams
	Verify(p Params, kind Kind) (Params, RawParams, error)
}

// DefaultVerifier normalises params with Options and validates them with
// struct tags
type DefaultVerifier struct {
	options  *Options
	validate *validator.Validate
}

// NewVerifier creates a DefaultVerifier using opts (defaults when nil)
func NewVerifier(opts *Options) *DefaultVerifier {
	if opts == nil {
		opts = DefaultOptions()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so errors match what API clients sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return &DefaultVerifier{options: opts, validate: v}
}

// Verify implements Verifier
func (d *DefaultVerifier) Verify(p Params, kind Kind) (Params, RawParams, error) {
	if p == nil {
		p = d.defaults(kind)
	}
	if p.Kind() != kind {
		return nil, RawParams{}, fmt.Errorf("%w: %s params cannot be used for %s pagination", ErrInvalidParams, p.Kind(), kind)
	}

	if err := d.validateStruct(p); err != nil {
		return nil, RawParams{}, err
	}

	p = d.normalize(p)
	raw := p.Raw()

	// Page size bounds depend on options, so they are checked after normalisation
	if raw.Size != nil {
		if err := d.checkSize("size", *raw.Size); err != nil {
			return nil, RawParams{}, err
		}
	}
	if raw.Limit != nil {
		if err := d.checkSize("limit", *raw.Limit); err != nil {
			return nil, RawParams{}, err
		}
	}

	return p, raw, nil
}

// defaults returns the params used when the API layer supplied none
func (d *DefaultVerifier) defaults(kind Kind) Params {
	if kind == KindCursor {
		return CursorParams{Size: d.options.DefaultPageSize}
	}
	return NewLimitOffset(d.options.DefaultPageSize, 0)
}

// normalize fills zero page sizes and page numbers
func (d *DefaultVerifier) normalize(p Params) Params {
	switch v := p.(type) {
	case CursorParams:
		v.Size = d.options.ResolvePageSize(v.Size)
		return v
	case *CursorParams:
		return d.normalize(*v)
	case PageParams:
		if v.Page < 1 {
			v.Page = 1
		}
		v.Size = d.options.ResolvePageSize(v.Size)
		return v
	case *PageParams:
		return d.normalize(*v)
	case *LimitOffsetParams:
		return *v
	default:
		return p
	}
}

func (d *DefaultVerifier) checkSize(field string, size int) error {
	rule := "min=1"
	if d.options.MaxPageSize > 0 {
		rule = fmt.Sprintf("min=1,max=%d", d.options.MaxPageSize)
	}
	if err := d.validate.Var(size, rule); err != nil {
		return InvalidParamError(field)
	}
	return nil
}

func (d *DefaultVerifier) validateStruct(p Params) error {
	val := reflect.ValueOf(p)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	// Custom Params implementations that are not structs carry no tags to check
	if val.Kind() != reflect.Struct {
		return nil
	}

	err := d.validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, InvalidParamError(fe.Field()))
	}
	return errors.Join(errs...)
}
