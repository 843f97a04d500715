package users

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// passwordSpecials is the set of characters accepted as the "special character"
// in a password.
const passwordSpecials = "@#$%^&+="

// RegisterValidators installs the user-domain validation rules into gin's
// binding engine. Must be called once before any request is bound.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("userpassword", validPassword)
	_ = v.RegisterValidation("usphone", validPhoneNumber)
	_ = v.RegisterValidation("userrole", validRole)
	_ = v.RegisterValidation("userstatus", validStatus)
}

// validPassword enforces the password policy: at least 8 characters with one
// digit, one lowercase, one uppercase, one special character and no whitespace.
func validPassword(fl validator.FieldLevel) bool {
	return PasswordMeetsPolicy(fl.Field().String())
}

// PasswordMeetsPolicy reports whether a plaintext password satisfies the
// complexity rules.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			hasSpecial = true
		}
	}

	return hasDigit && hasLower && hasUpper && hasSpecial
}

// validPhoneNumber enforces exactly 10 digits
func validPhoneNumber(fl validator.FieldLevel) bool {
	return PhoneNumberIsValid(fl.Field().String())
}

// PhoneNumberIsValid reports whether a phone number is exactly 10 digits
func PhoneNumberIsValid(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func validRole(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).IsValid()
}

func validStatus(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}

// BindingErrorFields converts a binding error into the field→message map
// reported to the caller. All violated rules on one request are collected
// together rather than short-circuited. Returns nil when the error is not a
// field validation error (e.g. malformed JSON).
func BindingErrorFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldErrorMessage(fe)
	}
	return fields
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "username":
		if fe.Tag() == "required" {
			return "Username is required"
		}
		return "Username must be between 3 and 50 characters"
	case "email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email format"
	case "password":
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return "Password must contain at least one digit, one lowercase, one uppercase, one special character and no spaces"
	case "phoneNumber":
		return "Phone number must be 10 digits"
	case "role":
		if fe.Tag() == "required" {
			return "Role is required"
		}
		return "Invalid role"
	case "status":
		return "Invalid status"
	}
	return fe.Field() + " is invalid"
}
