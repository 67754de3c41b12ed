package validation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name      string
		contact   Contact
		wantName  Code
		wantPhone Code
	}{
		{name: "valid colombian number", contact: Contact{Name: "Ana Gómez", Phone: "+57 300 123 4567"}},
		{name: "valid us number", contact: Contact{Name: "Ana", Phone: "+1 305 555 0100"}},
		{name: "dashes and parentheses", contact: Contact{Name: "Ana", Phone: "(305) 555-0100"}},
		{name: "dots", contact: Contact{Name: "Ana", Phone: "300.123.4567"}},
		{name: "too short", contact: Contact{Name: "Ana", Phone: "123"}, wantPhone: CodePhoneInvalid},
		{name: "too long", contact: Contact{Name: "Ana", Phone: "+1234567890123456"}, wantPhone: CodePhoneInvalid},
		{name: "letters", contact: Contact{Name: "Ana", Phone: "300-CALL-ANA"}, wantPhone: CodePhoneInvalid},
		{name: "plus in the middle", contact: Contact{Name: "Ana", Phone: "300+1234567"}, wantPhone: CodePhoneInvalid},
		{name: "empty phone", contact: Contact{Name: "Ana", Phone: ""}, wantPhone: CodePhoneRequired},
		{name: "blank phone", contact: Contact{Name: "Ana", Phone: "   "}, wantPhone: CodePhoneRequired},
		{name: "empty name", contact: Contact{Name: "", Phone: "+57 300 123 4567"}, wantName: CodeNameRequired},
		{name: "whitespace name", contact: Contact{Name: " ", Phone: "+57 300 123 4567"}, wantName: CodeNameRequired},
		{name: "both invalid", contact: Contact{Name: "\t", Phone: "12"}, wantName: CodeNameRequired, wantPhone: CodePhoneInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateContact(tt.contact)
			if got.Name != tt.wantName {
				t.Errorf("name code = %q, want %q", got.Name, tt.wantName)
			}
			if got.Phone != tt.wantPhone {
				t.Errorf("phone code = %q, want %q", got.Phone, tt.wantPhone)
			}
			if got.Valid() != (tt.wantName == "" && tt.wantPhone == "") {
				t.Errorf("Valid() = %v", got.Valid())
			}
		})
	}
}

func TestValidateSingleFields(t *testing.T) {
	if err := ValidateName("Ana"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ValidateName("  ")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Code != CodeNameRequired {
		t.Errorf("ValidateName(blank) = %v", err)
	}

	err = ValidatePhone("123")
	if !errors.As(err, &fe) || fe.Code != CodePhoneInvalid || fe.Field != "phone" {
		t.Errorf("ValidatePhone(123) = %v", err)
	}
	if err := ValidatePhone("+1 305 555 0100"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStripPhone(t *testing.T) {
	if got := StripPhone(" +57 (300) 123-45.67 "); got != "+573001234567" {
		t.Errorf("StripPhone = %q", got)
	}
}

func TestContactTagsAreRegistered(t *testing.T) {
	v, err := newValidator()
	if err != nil {
		t.Fatalf("newValidator() error = %v", err)
	}
	if err := v.Struct(Contact{Name: "Ana Gómez", Phone: "+57 300 123 4567"}); err != nil {
		t.Errorf("valid contact rejected: %v", err)
	}

	typ := reflect.TypeOf(Contact{})
	for i := 0; i < typ.NumField(); i++ {
		for _, tag := range strings.Split(typ.Field(i).Tag.Get("validate"), ",") {
			if _, ok := customTags[tag]; !ok {
				t.Errorf("field %s uses unregistered tag %q", typ.Field(i).Name, tag)
			}
		}
	}
}
