package rsvp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/rsvpfence/sheet"
)

const (
	MaxNameLength = 100
	MinGuests     = 1
	MaxGuests     = 10
)

// Field names used in validation error maps.
const (
	FieldName       = "name"
	FieldStatus     = "attendanceStatus"
	FieldGuestCount = "guestCount"
)

// Latin letters including the Latin-1 Supplement and Latin Extended-A ranges,
// whitespace, apostrophe, hyphen and full stop.
var namePattern = regexp.MustCompile(`^[a-zA-Z\x{00C0}-\x{017F}\s'\-.]+$`)

type submission struct {
	name       string
	status     sheet.Status
	guestCount int // 0 when not attending
}

type edit struct {
	name       string
	guestCount int
}

// normalizeName trims the name and collapses inner whitespace runs to one space.
func normalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func checkName(raw string, errs map[string]string) string {
	name := normalizeName(raw)
	switch {
	case name == "":
		errs[FieldName] = keyNameRequired
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs[FieldName] = keyNameTooLong
	case !namePattern.MatchString(name):
		errs[FieldName] = keyNameInvalid
	}
	return name
}

func checkGuests(count *int, errs map[string]string) int {
	switch {
	case count == nil:
		errs[FieldGuestCount] = keyGuestsRequired
		return 0
	case *count < MinGuests:
		errs[FieldGuestCount] = keyGuestsMin
	case *count > MaxGuests:
		errs[FieldGuestCount] = keyGuestsMax
	}
	return *count
}

// validateSubmission checks a new RSVP. Guest count is required when
// attending and ignored otherwise.
func validateSubmission(req SubmitRequest) (submission, map[string]string) {
	errs := make(map[string]string)
	sub := submission{name: checkName(req.Name, errs)}

	status := sheet.Status(req.Status)
	if !status.Valid() {
		errs[FieldStatus] = keyStatusInvalid
	}
	sub.status = status

	if status == sheet.StatusAttending {
		sub.guestCount = checkGuests(req.GuestCount, errs)
	}

	if len(errs) > 0 {
		return submission{}, errs
	}
	return sub, nil
}

// validateEdit checks an edit payload. Only name and guest count exist here,
// so nothing else can be written back.
func validateEdit(req UpdateRequest) (edit, map[string]string) {
	errs := make(map[string]string)
	e := edit{
		name:       checkName(req.Name, errs),
		guestCount: checkGuests(req.GuestCount, errs),
	}
	if len(errs) > 0 {
		return edit{}, errs
	}
	return e, nil
}
