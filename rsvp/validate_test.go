package rsvp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/rsvpfence/sheet"
)

func TestValidateSubmission_GuestCountBoundaries(t *testing.T) {
	tests := []struct {
		count   *int
		wantErr string
	}{
		{count: intPtr(0), wantErr: keyGuestsMin},
		{count: intPtr(-3), wantErr: keyGuestsMin},
		{count: intPtr(1)},
		{count: intPtr(10)},
		{count: intPtr(11), wantErr: keyGuestsMax},
		{count: nil, wantErr: keyGuestsRequired},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.count != nil {
			name = fmt.Sprint(*tt.count)
		}
		t.Run(name, func(t *testing.T) {
			sub, errs := validateSubmission(SubmitRequest{Name: "Ahmad", Status: "attending", GuestCount: tt.count})
			if tt.wantErr == "" {
				assert.Nil(t, errs)
				assert.Equal(t, *tt.count, sub.guestCount)
				return
			}
			assert.Equal(t, map[string]string{FieldGuestCount: tt.wantErr}, errs)
		})
	}
}

func TestValidateSubmission_NotAttendingIgnoresGuests(t *testing.T) {
	for _, count := range []*int{nil, intPtr(0), intPtr(11)} {
		sub, errs := validateSubmission(SubmitRequest{Name: "Ben", Status: "not_attending", GuestCount: count})
		assert.Nil(t, errs)
		assert.Equal(t, sheet.StatusNotAttending, sub.status)
		assert.Zero(t, sub.guestCount)
	}
}

func TestValidateSubmission_Status(t *testing.T) {
	for _, status := range []string{"", "hadir", "Attending", "ATTENDING", "maybe"} {
		t.Run(status, func(t *testing.T) {
			_, errs := validateSubmission(SubmitRequest{Name: "Ahmad", Status: status, GuestCount: intPtr(1)})
			assert.Equal(t, keyStatusInvalid, errs[FieldStatus])
		})
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{name: "plain", raw: "Ahmad", want: "Ahmad"},
		{name: "trimmed and collapsed", raw: "  Siti \t Nur   Aisyah ", want: "Siti Nur Aisyah"},
		{name: "accents and punctuation", raw: "José-María O'Neil Jr.", want: "José-María O'Neil Jr."},
		{name: "latin extended-a", raw: "Łukasz Żółć", want: "Łukasz Żółć"},
		{name: "exactly 100", raw: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
		{name: "101", raw: strings.Repeat("a", 101), wantErr: keyNameTooLong},
		{name: "100 multibyte", raw: strings.Repeat("é", 100), want: strings.Repeat("é", 100)},
		{name: "empty", raw: "", wantErr: keyNameRequired},
		{name: "whitespace only", raw: " \n\t ", wantErr: keyNameRequired},
		{name: "digits", raw: "Ahmad 2", wantErr: keyNameInvalid},
		{name: "markup", raw: "<script>", wantErr: keyNameInvalid},
		{name: "formula", raw: "=HYPERLINK(1)", wantErr: keyNameInvalid},
		{name: "outside latin ranges", raw: "Ахмад", wantErr: keyNameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := map[string]string{}
			got := checkName(tt.raw, errs)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errs[FieldName])
				return
			}
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEdit(t *testing.T) {
	e, errs := validateEdit(UpdateRequest{Name: " Ahmad ", GuestCount: intPtr(10)})
	assert.Nil(t, errs)
	assert.Equal(t, edit{name: "Ahmad", guestCount: 10}, e)

	_, errs = validateEdit(UpdateRequest{Name: "", GuestCount: intPtr(0)})
	assert.Equal(t, map[string]string{
		FieldName:       keyNameRequired,
		FieldGuestCount: keyGuestsMin,
	}, errs)
}
