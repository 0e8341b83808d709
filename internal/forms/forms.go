// Package forms validates view input before it reaches the state containers.
// Inputs arrive as strings straight from the text fields; a form that passes
// Validate converts cleanly into its record type.
package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

// Errors maps a field key to its message. An empty Errors means valid.
type Errors map[string]string

// OK reports whether no field failed.
func (e Errors) OK() bool { return len(e) == 0 }

// Get returns the message for field, or "".
func (e Errors) Get(field string) string { return e[field] }

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var emailLike = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

const passwordSpecials = "@$!%*?&#."

// PasswordPolicyMessage describes the password rule.
const PasswordPolicyMessage = "Password must be 6 to 12 characters with an uppercase letter, a lowercase letter, a number and a special character."

// ValidEmailLike reports whether s looks like an email address.
func ValidEmailLike(s string) bool { return emailLike.MatchString(s) }

// ValidPassword applies the password policy: 6 to 12 characters including an
// upper and a lower case letter, a digit and one of @$!%*?&#. Any other
// character only counts toward the length.
func ValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 6 || n > 12 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" {
				return name
			}
			return f.Name
		})
		mustRegister(v, "email_like", func(fl validator.FieldLevel) bool {
			return ValidEmailLike(fl.Field().String())
		})
		mustRegister(v, "password_policy", func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		})
		mustRegister(v, "price", func(fl validator.FieldLevel) bool {
			_, err := parsePrice(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if price < 0 {
		return 0, fmt.Errorf("price is negative")
	}
	return price, nil
}

// check runs the validator over in and translates failures with labels.
func check(in any, labels map[string]string) Errors {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"form": err.Error()}
	}
	out := Errors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe, labels[field])
	}
	return out
}

func message(fe validator.FieldError, label string) string {
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email_like":
		return "Incorrect email format"
	case "password_policy":
		return PasswordPolicyMessage
	case "eqfield":
		return "Passwords do not match"
	case "url":
		return label + " must be a valid URL"
	case "price":
		return label + " must be a number greater than or equal to 0"
	default:
		return label + " is not valid"
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
