package forms

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var skills = []string{"React", "Node.js", "Python", "AI/ML", "UI/UX"}

func volunteerForm() url.Values {
	return url.Values{
		"name":         {"  Asha Patel "},
		"email":        {"asha@example.org"},
		"contact":      {"+91 98765 43210"},
		"bio":          {"Community organiser."},
		"skills":       {"Python", "React"},
		"contribution": {"Run local meetups."},
	}
}

func TestParseVolunteer(t *testing.T) {
	v, err := ParseVolunteer(volunteerForm(), skills)
	require.NoError(t, err)
	assert.Equal(t, Volunteer{
		Name:         "Asha Patel",
		Email:        "asha@example.org",
		Contact:      "+91 98765 43210",
		Bio:          "Community organiser.",
		Skills:       []string{"React", "Python"},
		Contribution: "Run local meetups.",
	}, v)
	assert.Equal(t, map[string]bool{"React": true, "Python": true}, v.SkillSet())
}

func TestParseVolunteerWithoutSkills(t *testing.T) {
	form := volunteerForm()
	form.Del("skills")
	v, err := ParseVolunteer(form, skills)
	require.NoError(t, err)
	assert.Empty(t, v.Skills)
}

func TestParseVolunteerErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
	}{
		{"missing name", func(f url.Values) { f.Set("name", "   ") }, "name"},
		{"missing email", func(f url.Values) { f.Del("email") }, "email"},
		{"bad email", func(f url.Values) { f.Set("email", "asha@") }, "email"},
		{"display name email", func(f url.Values) { f.Set("email", "Asha <asha@example.org>") }, "email"},
		{"missing contact", func(f url.Values) { f.Del("contact") }, "contact"},
		{"missing bio", func(f url.Values) { f.Del("bio") }, "bio"},
		{"missing contribution", func(f url.Values) { f.Del("contribution") }, "contribution"},
		{"unknown skill", func(f url.Values) { f.Add("skills", "Juggling") }, "skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := volunteerForm()
			tt.edit(form)
			v, err := ParseVolunteer(form, skills)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Len(t, verrs, 1)
			assert.Contains(t, verrs, tt.field)
			assert.Equal(t, "asha@example.org", volunteerForm().Get("email"), "input untouched")
			assert.NotNil(t, v.Values())
		})
	}
}

func TestParseAuth(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		errs   []string
		signUp bool
	}{
		{
			name:   "sign up",
			form:   url.Values{"mode": {"signup"}, "name": {"Ada"}, "email": {"ada@example.com"}, "password": {"pw1"}, "confirmPassword": {"pw1"}},
			signUp: true,
		},
		{
			name:   "sign up mismatch",
			form:   url.Values{"mode": {"signup"}, "name": {"Ada"}, "email": {"ada@example.com"}, "password": {"pw1"}, "confirmPassword": {"pw2"}},
			errs:   []string{"confirmPassword"},
			signUp: true,
		},
		{
			name:   "sign up missing fields",
			form:   url.Values{"mode": {"signup"}},
			errs:   []string{"confirmPassword", "email", "name", "password"},
			signUp: true,
		},
		{
			name: "sign in needs no name",
			form: url.Values{"mode": {"signin"}, "email": {"ada@example.com"}, "password": {"pw1"}},
		},
		{
			name: "sign in missing password",
			form: url.Values{"mode": {"signin"}, "email": {"ada@example.com"}},
			errs: []string{"password"},
		},
		{
			name:   "unknown mode signs up",
			form:   url.Values{"mode": {"admin"}, "name": {"Ada"}, "email": {"ada@example.com"}, "password": {"x"}, "confirmPassword": {"x"}},
			signUp: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAuth(tt.form)
			assert.Equal(t, tt.signUp, a.SignUp())
			if len(tt.errs) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var got []string
			for f := range verrs {
				got = append(got, f)
			}
			assert.ElementsMatch(t, tt.errs, got)
		})
	}
}

func TestAuthValuesNeverEchoPasswords(t *testing.T) {
	a, _ := ParseAuth(url.Values{"email": {"ada@example.com"}, "password": {"secret"}, "confirmPassword": {"secret"}})
	for _, v := range a.Values() {
		assert.NotEqual(t, "secret", v)
	}
}

func TestParseSubscription(t *testing.T) {
	s, err := ParseSubscription(url.Values{"email": {" me@example.com "}, "source": {"footer"}})
	require.NoError(t, err)
	assert.Equal(t, Subscription{Email: "me@example.com", Source: "footer"}, s)

	_, err = ParseSubscription(url.Values{"email": {"not-an-email"}})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Enter a valid email address.", verrs["email"])
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{"name": "required", "email": "invalid"}
	assert.Equal(t, "invalid form: email: invalid; name: required", err.Error())
}
