package models

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	dErrors "immersionfacile/pkg/domain-errors"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MaxImmersionDays bounds the gap between dateStart and dateEnd.
const MaxImmersionDays = 28

var (
	siretRegexp = regexp.MustCompile(`^\d{14}$`)
	phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9 .\-()]{7,18}[0-9]$`)
)

// Validate checks the convention document. It normalizes surrounding
// whitespace on free text fields.
func (c *Convention) Validate() error {
	c.trim()

	required := []struct{ name, value string }{
		{"id", c.ID},
		{"agencyId", c.AgencyID},
		{"email", c.Email},
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"siret", c.Siret},
		{"businessName", c.BusinessName},
		{"mentor", c.Mentor},
		{"mentorPhone", c.MentorPhone},
		{"mentorEmail", c.MentorEmail},
		{"immersionProfession", c.ImmersionProfession},
		{"immersionActivities", c.ImmersionActivities},
		{"dateSubmission", c.DateSubmission},
		{"dateStart", c.DateStart},
		{"dateEnd", c.DateEnd},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.Newf(dErrors.CodeValidation, "%s is required", f.name)
		}
	}
	if !IsValidID(c.ID) {
		return dErrors.New(dErrors.CodeValidation, "id must be a uuid")
	}
	if !c.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", c.Status)
	}

	if _, err := ParseDate(c.DateSubmission); err != nil {
		return dErrors.New(dErrors.CodeValidation, "dateSubmission must be YYYY-MM-DD")
	}
	start, err := ParseDate(c.DateStart)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "dateStart must be YYYY-MM-DD")
	}
	end, err := ParseDate(c.DateEnd)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "dateEnd must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return dErrors.New(dErrors.CodeValidation, "dateEnd must be after dateStart")
	}
	if end.After(start.AddDate(0, 0, MaxImmersionDays)) {
		return dErrors.Newf(dErrors.CodeValidation, "an immersion lasts at most %d days", MaxImmersionDays)
	}

	if !siretRegexp.MatchString(c.Siret) {
		return dErrors.New(dErrors.CodeValidation, "siret must be 14 digits")
	}
	if !validEmail(c.Email) {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if !validEmail(c.MentorEmail) {
		return dErrors.New(dErrors.CodeValidation, "mentorEmail is invalid")
	}
	if strings.EqualFold(c.Email, c.MentorEmail) {
		return dErrors.New(dErrors.CodeValidation, "beneficiary and mentor emails must differ")
	}
	if !phoneRegexp.MatchString(c.MentorPhone) {
		return dErrors.New(dErrors.CodeValidation, "mentorPhone is invalid")
	}
	if c.Phone != "" && !phoneRegexp.MatchString(c.Phone) {
		return dErrors.New(dErrors.CodeValidation, "phone is invalid")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (c *Convention) trim() {
	for _, f := range []*string{
		&c.ID, &c.AgencyID, &c.Email, &c.FirstName, &c.LastName, &c.Siret,
		&c.BusinessName, &c.Mentor, &c.MentorPhone, &c.MentorEmail, &c.Phone,
		&c.ImmersionProfession, &c.ImmersionActivities,
	} {
		*f = strings.TrimSpace(*f)
	}
}
