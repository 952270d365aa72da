// Package validation checks registration input before anything is hashed or
// stored. Extra password and role rules are plugged in as Hooks.
package validation

import (
	"fmt"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/server/password"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxEmailLength is the longest accepted email, per RFC 5321.
const MaxEmailLength = 254

// Hook is an additional rule applied to a single field. A non-nil error
// rejects the input and its text is shown to the caller.
type Hook func(value string) error

// RegisterInput is what a caller supplies to create an account. An empty Role
// is allowed and later replaced with the default role.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// Validator validates RegisterInput. The zero value applies only the built-in
// rules.
type Validator struct {
	passwordHooks []Hook
	roleHooks     []Hook
}

type Option func(*Validator)

// WithPasswordHook adds a password rule, e.g. a minimum length or character
// classes.
func WithPasswordHook(h Hook) Option {
	return func(v *Validator) { v.passwordHooks = append(v.passwordHooks, h) }
}

// WithRoleHook adds a role rule, e.g. a whitelist. It only runs for a
// non-empty role.
func WithRoleHook(h Hook) Option {
	return func(v *Validator) { v.roleHooks = append(v.roleHooks, h) }
}

func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Register validates in. Failures wrap common.ErrValidation.
func (v *Validator) Register(in RegisterInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required,
			validation.Length(3, MaxEmailLength),
			is.EmailFormat,
		),
		validation.Field(&in.Password,
			validation.By(stringRule(password.CheckLength)),
			validation.By(hooks(v.passwordHooks)),
		),
		validation.Field(&in.Role,
			validation.When(in.Role != "", validation.By(hooks(v.roleHooks))),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}
	return nil
}

func hooks(hs []Hook) validation.RuleFunc {
	return func(value interface{}) error {
		for _, h := range hs {
			if err := stringRule(h)(value); err != nil {
				return err
			}
		}
		return nil
	}
}

func stringRule(h Hook) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		return h(s)
	}
}
