// Package validation provides declarative per-route field checks for fiber.
//
// A route lists one Chain per field; every chain runs and records its
// failures on the request, then middleware.HandleInputErrors decides whether
// the handler is reached:
//
//	router.Put("/:id",
//		validation.Param("id").IsInt().WithMessage("ID no valido").Handler(),
//		validation.Body("name").NotEmpty().WithMessage("...").Handler(),
//		middleware.HandleInputErrors,
//		h.HandleUpdateProduct)
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"productsapi/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	LocationParams = "params"
	LocationBody   = "body"

	errorsKey = "validation.errors"
	bodyKey   = "validation.body"
)

var (
	validate = newValidator()

	intPattern = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// "int": base-10 integer, optional sign, no leading zeros.
	if err := v.RegisterValidation("int", func(fl validator.FieldLevel) bool {
		return intPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type check struct {
	tag string
	msg string
}

// Chain is an ordered list of checks against one request field.
type Chain struct {
	location string
	field    string
	checks   []check
}

// Param starts a chain for a path parameter.
func Param(field string) *Chain {
	return &Chain{location: LocationParams, field: field}
}

// Body starts a chain for a top-level JSON body field.
func Body(field string) *Chain {
	return &Chain{location: LocationBody, field: field}
}

// IsInt requires a base-10 integer: an optional sign and no leading zeros.
func (c *Chain) IsInt() *Chain { return c.add("int") }

// NotEmpty requires a present, non-empty value.
func (c *Chain) NotEmpty() *Chain { return c.add("required") }

// IsNumeric requires a decimal number (JSON number or numeric string).
func (c *Chain) IsNumeric() *Chain { return c.add("numeric") }

// IsBoolean requires a boolean (JSON bool or a string such as "true" or "0").
func (c *Chain) IsBoolean() *Chain { return c.add("boolean") }

// Gt requires a numeric value strictly greater than n.
func (c *Chain) Gt(n float64) *Chain {
	return c.add("gt=" + strconv.FormatFloat(n, 'f', -1, 64))
}

// WithMessage sets the message reported when the previous check fails.
func (c *Chain) WithMessage(msg string) *Chain {
	if len(c.checks) > 0 {
		c.checks[len(c.checks)-1].msg = msg
	}
	return c
}

func (c *Chain) add(tag string) *Chain {
	c.checks = append(c.checks, check{tag: tag, msg: "Invalid value"})
	return c
}

// Run evaluates every check of the chain and records the failures.
func (c *Chain) Run(ctx *fiber.Ctx) {
	value, present := c.value(ctx)
	for _, ch := range c.checks {
		if !passes(ch.tag, value, present) {
			AddError(ctx, models.FieldError{
				Type:     "field",
				Value:    value,
				Msg:      ch.msg,
				Path:     c.field,
				Location: c.location,
			})
		}
	}
}

// Handler returns the chain as fiber middleware.
func (c *Chain) Handler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		c.Run(ctx)
		return ctx.Next()
	}
}

func (c *Chain) value(ctx *fiber.Ctx) (interface{}, bool) {
	if c.location == LocationParams {
		v := ctx.Params(c.field)
		return v, v != ""
	}
	v, ok := body(ctx)[c.field]
	return v, ok && v != nil
}

// passes runs one validator tag against a raw request value. Numbers and
// booleans are checked on their string form, like query/path values.
func passes(tag string, value interface{}, present bool) bool {
	if !present {
		return false
	}
	if tag == "boolean" {
		if _, ok := value.(bool); ok {
			return true
		}
	}
	if strings.HasPrefix(tag, "gt=") {
		f, ok := toFloat(value)
		return ok && validate.Var(f, tag) == nil
	}
	return validate.Var(toString(value), tag) == nil
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// body decodes the JSON body once per request. A missing or malformed body
// yields an empty map, so every body check fails instead of the request
// erroring out.
func body(ctx *fiber.Ctx) map[string]interface{} {
	if m, ok := ctx.Locals(bodyKey).(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	if len(ctx.Body()) > 0 {
		if err := ctx.App().Config().JSONDecoder(ctx.Body(), &m); err != nil {
			m = map[string]interface{}{}
		}
	}
	ctx.Locals(bodyKey, m)
	return m
}

// AddError records a failure on the request.
func AddError(ctx *fiber.Ctx, fe models.FieldError) {
	errs, _ := ctx.Locals(errorsKey).([]models.FieldError)
	ctx.Locals(errorsKey, append(errs, fe))
}

// Errors returns every failure recorded on the request so far.
func Errors(ctx *fiber.Ctx) []models.FieldError {
	errs, _ := ctx.Locals(errorsKey).([]models.FieldError)
	return errs
}
