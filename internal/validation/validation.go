package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/account-service/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator

	// Optional leading +, then 7 to 15 digits (E.164 length bounds).
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names ("profileImage") instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Register custom validators
	_ = validate.RegisterValidation("phone", validatePhone)
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, trans)
	_ = validate.RegisterTranslation("phone", trans,
		func(u ut.Translator) error {
			return u.Add("phone", "{0} must be a valid phone number", true)
		},
		func(u ut.Translator, fe validator.FieldError) string {
			t, _ := u.T("phone", fe.Field())
			return t
		},
	)
	_ = validate.RegisterTranslation("maxbytes", trans,
		func(u ut.Translator) error {
			return u.Add("maxbytes", "{0} must be at most {1} bytes", true)
		},
		func(u ut.Translator, fe validator.FieldError) string {
			t, _ := u.T("maxbytes", fe.Field(), fe.Param())
			return t
		},
	)
}

// validatePhone accepts digits with an optional leading +, ignoring spaces and dashes.
func validatePhone(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

// validateMaxBytes bounds the encoded length of a string; "max" counts runes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

func IsPhone(s string) bool {
	return phoneRegex.MatchString(domain.NormalizePhone(s))
}

func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "email,max=254") == nil
}

// Struct validates a request DTO and returns the first failure as a domain error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return domain.ErrInvalidField("body", err.Error())
	}
	return formatFieldError(fieldErrs[0])
}

// formatFieldError maps a single validator failure onto the error taxonomy.
func formatFieldError(fe validator.FieldError) *domain.Error {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "min", "maxbytes":
		if field == "password" {
			return domain.ErrWeakPassword(fe.Translate(trans))
		}
	case "required_without":
		return domain.ErrIdentifierRequired()
	}
	return domain.ErrInvalidField(field, fe.Translate(trans))
}
