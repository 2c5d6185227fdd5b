// Package forms parses and validates the site's form posts.
package forms

import (
	"net/mail"
	"net/url"
	"sort"
	"strings"
)

// ValidationErrors maps a form field to the message shown next to it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	b.WriteString("invalid form:")
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(v[f])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) required(field, value, msg string) {
	if value == "" {
		v[field] = msg
	}
}

func (v ValidationErrors) email(field, value string) {
	if value == "" {
		v[field] = "Email address is required."
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value, ".") {
		v[field] = "Enter a valid email address."
	}
}

func field(form url.Values, name string) string {
	return strings.TrimSpace(form.Get(name))
}

// Volunteer is an application from the volunteer dialog.
type Volunteer struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Contact      string   `json:"contact"`
	Bio          string   `json:"bio"`
	Skills       []string `json:"skills"`
	Contribution string   `json:"contribution"`
}

// ParseVolunteer reads a volunteer application. Skills must come from
// allowed; the order of allowed is kept.
func ParseVolunteer(form url.Values, allowed []string) (Volunteer, error) {
	v := Volunteer{
		Name:         field(form, "name"),
		Email:        field(form, "email"),
		Contact:      field(form, "contact"),
		Bio:          field(form, "bio"),
		Contribution: field(form, "contribution"),
	}
	errs := ValidationErrors{}
	errs.required("name", v.Name, "Full name is required.")
	errs.email("email", v.Email)
	errs.required("contact", v.Contact, "Contact number is required.")
	errs.required("bio", v.Bio, "A short bio is required.")
	errs.required("contribution", v.Contribution, "Tell us what you can contribute.")

	chosen := make(map[string]bool)
	for _, s := range form["skills"] {
		chosen[strings.TrimSpace(s)] = true
	}
	for _, s := range allowed {
		if chosen[s] {
			v.Skills = append(v.Skills, s)
			delete(chosen, s)
		}
	}
	delete(chosen, "")
	if len(chosen) > 0 {
		errs["skills"] = "Choose skills from the list."
	}
	return v, errs.orNil()
}

// Values returns the submitted text fields for redisplay.
func (v Volunteer) Values() map[string]string {
	return map[string]string{
		"name":         v.Name,
		"email":        v.Email,
		"contact":      v.Contact,
		"bio":          v.Bio,
		"contribution": v.Contribution,
	}
}

func (v Volunteer) SkillSet() map[string]bool {
	set := make(map[string]bool, len(v.Skills))
	for _, s := range v.Skills {
		set[s] = true
	}
	return set
}

const (
	ModeSignUp = "signup"
	ModeSignIn = "signin"
)

// Auth is a sign-up or sign-in attempt.
type Auth struct {
	Mode            string `json:"mode"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

func (a Auth) SignUp() bool { return a.Mode == ModeSignUp }

// ParseAuth reads the auth form. An unknown mode is treated as sign-up.
func ParseAuth(form url.Values) (Auth, error) {
	a := Auth{
		Mode:            field(form, "mode"),
		Name:            field(form, "name"),
		Email:           field(form, "email"),
		Password:        form.Get("password"),
		ConfirmPassword: form.Get("confirmPassword"),
	}
	if a.Mode != ModeSignIn {
		a.Mode = ModeSignUp
	}
	errs := ValidationErrors{}
	errs.email("email", a.Email)
	errs.required("password", a.Password, "Password is required.")
	if a.SignUp() {
		errs.required("name", a.Name, "Full name is required.")
		if a.ConfirmPassword == "" {
			errs["confirmPassword"] = "Confirm your password."
		} else if a.ConfirmPassword != a.Password {
			errs["confirmPassword"] = "Passwords do not match."
		}
	}
	return a, errs.orNil()
}

// Values returns the fields safe to redisplay. Passwords are never echoed.
func (a Auth) Values() map[string]string {
	return map[string]string{"name": a.Name, "email": a.Email}
}

// Subscription is a newsletter signup.
type Subscription struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

func ParseSubscription(form url.Values) (Subscription, error) {
	s := Subscription{Email: field(form, "email"), Source: field(form, "source")}
	errs := ValidationErrors{}
	errs.email("email", s.Email)
	return s, errs.orNil()
}
