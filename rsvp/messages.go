package rsvp

import (
	"fmt"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/yourusername/rsvpfence/core"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "ms"

const (
	keyDeadlinePassed    = "error.deadline_passed"
	keyInvalidToken      = "error.invalid_token"
	keyRateLimited       = "error.rate_limited"
	keyValidationFailed  = "error.validation_failed"
	keyStatusNotEligible = "error.status_not_eligible"
	keyUpstream          = "error.upstream"
	keyUnknown           = "error.unknown"

	keySubmittedAttending    = "success.submitted_attending"
	keySubmittedNotAttending = "success.submitted_not_attending"
	keyUpdated               = "success.updated"

	keyWaitNow     = "wait.now"
	keyWaitSeconds = "wait.seconds"
	keyWaitMinutes = "wait.minutes"
	keyWaitHours   = "wait.hours"

	keyNameRequired   = "field.name.required"
	keyNameTooLong    = "field.name.too_long"
	keyNameInvalid    = "field.name.invalid"
	keyStatusInvalid  = "field.status.invalid"
	keyGuestsRequired = "field.guests.required"
	keyGuestsMin      = "field.guests.min"
	keyGuestsMax      = "field.guests.max"
)

var malay = map[string]string{
	keyDeadlinePassed:    "RSVP telah ditutup. Sila hubungi penganjur untuk sebarang pertanyaan.",
	keyInvalidToken:      "Pautan edit tidak sah atau telah tamat tempoh.",
	keyRateLimited:       "Terlalu banyak percubaan. Sila cuba lagi dalam %s.",
	keyValidationFailed:  "Sila betulkan maklumat yang diberikan.",
	keyStatusNotEligible: "Hanya RSVP dengan status 'Hadir' boleh dikemaskini.",
	keyUpstream:          "Perkhidmatan sedang sibuk. Sila cuba sebentar lagi.",
	keyUnknown:           "Ralat tidak dijangka berlaku. Sila cuba lagi.",

	keySubmittedAttending:    "Terima kasih! RSVP anda telah berjaya dihantar. Kami tunggu kehadiran anda!",
	keySubmittedNotAttending: "Terima kasih atas maklum balas anda.",
	keyUpdated:               "RSVP anda telah berjaya dikemaskini!",

	keyWaitNow:     "sekarang",
	keyWaitSeconds: "%d saat",
	keyWaitMinutes: "%d minit",
	keyWaitHours:   "%d jam",

	keyNameRequired:   "Nama diperlukan.",
	keyNameTooLong:    "Nama terlalu panjang (maksimum 100 aksara).",
	keyNameInvalid:    "Nama hanya boleh mengandungi huruf, ruang, apostrof ('), tanda sempang (-) dan noktah (.)",
	keyStatusInvalid:  "Sila pilih status kehadiran.",
	keyGuestsRequired: "Sila nyatakan bilangan orang yang akan hadir.",
	keyGuestsMin:      "Bilangan minimum adalah 1 orang.",
	keyGuestsMax:      "Bilangan maksimum adalah 10 orang.",
}

var english = map[string]string{
	keyDeadlinePassed:    "RSVP is closed. Please contact the organiser with any questions.",
	keyInvalidToken:      "This edit link is invalid or has expired.",
	keyRateLimited:       "Too many attempts. Please try again in %s.",
	keyValidationFailed:  "Please correct the details provided.",
	keyStatusNotEligible: "Only RSVPs marked as attending can be updated.",
	keyUpstream:          "The service is busy. Please try again shortly.",
	keyUnknown:           "An unexpected error occurred. Please try again.",

	keySubmittedAttending:    "Thank you! Your RSVP has been submitted. We look forward to seeing you!",
	keySubmittedNotAttending: "Thank you for letting us know.",
	keyUpdated:               "Your RSVP has been updated!",

	keyWaitNow: "now",

	keyNameRequired:   "Name is required.",
	keyNameTooLong:    "Name is too long (maximum 100 characters).",
	keyNameInvalid:    "Name may only contain letters, spaces, apostrophes ('), hyphens (-) and full stops (.)",
	keyStatusInvalid:  "Please choose an attendance status.",
	keyGuestsRequired: "Please state how many people will attend.",
	keyGuestsMin:      "The minimum is 1 person.",
	keyGuestsMax:      "The maximum is 10 people.",
}

var supportedLocales = []language.Tag{language.Malay, language.English}

var messageCatalog = mustBuildCatalog()

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Malay))
	for key, msg := range malay {
		if err := b.SetString(language.Malay, key, msg); err != nil {
			panic(fmt.Sprintf("register %s/%s: %v", language.Malay, key, err))
		}
	}
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			panic(fmt.Sprintf("register %s/%s: %v", language.English, key, err))
		}
	}

	units := map[string][2]string{
		keyWaitSeconds: {"%d second", "%d seconds"},
		keyWaitMinutes: {"%d minute", "%d minutes"},
		keyWaitHours:   {"%d hour", "%d hours"},
	}
	for key, forms := range units {
		err := b.Set(language.English, key, plural.Selectf(1, "%d",
			plural.One, forms[0],
			plural.Other, forms[1],
		))
		if err != nil {
			panic(fmt.Sprintf("register %s/%s: %v", language.English, key, err))
		}
	}
	return b
}

// Messages renders user-facing text in one locale.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMessages returns the catalog for locale ("ms" or "en").
func NewMessages(locale string) (*Messages, error) {
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedLocale, locale, err)
	}
	_, index, confidence := language.NewMatcher(supportedLocales).Match(requested)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	tag := supportedLocales[index]
	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messageCatalog)),
	}, nil
}

// Locale returns the matched locale tag.
func (m *Messages) Locale() language.Tag {
	return m.tag
}

func (m *Messages) text(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}

// Wait renders a retry-after amount, e.g. "3 minit" or "1 minute".
func (m *Messages) Wait(w core.Wait) string {
	switch w.Unit {
	case core.UnitSeconds:
		return m.text(keyWaitSeconds, w.Value)
	case core.UnitMinutes:
		return m.text(keyWaitMinutes, w.Value)
	case core.UnitHours:
		return m.text(keyWaitHours, w.Value)
	default:
		return m.text(keyWaitNow)
	}
}

// RateLimited renders the throttling message for w.
func (m *Messages) RateLimited(w core.Wait) string {
	return m.text(keyRateLimited, m.Wait(w))
}

// ForKind returns the generic message for a failure kind.
// Rate limiting needs a wait and goes through RateLimited instead.
func (m *Messages) ForKind(k Kind) string {
	switch k {
	case KindDeadlinePassed:
		return m.text(keyDeadlinePassed)
	case KindInvalidToken:
		return m.text(keyInvalidToken)
	case KindRateLimited:
		return m.RateLimited(core.Wait{Unit: core.UnitNow})
	case KindValidationFailed:
		return m.text(keyValidationFailed)
	case KindStatusNotEligible:
		return m.text(keyStatusNotEligible)
	case KindUpstreamTransient, KindUpstreamFatal:
		return m.text(keyUpstream)
	default:
		return m.text(keyUnknown)
	}
}

// Fields translates field -> message key pairs.
func (m *Messages) Fields(keys map[string]string) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	out := make(map[string]string, len(keys))
	for field, key := range keys {
		out[field] = m.text(key)
	}
	return out
}
