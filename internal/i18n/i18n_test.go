package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLang(t *testing.T) {
	tests := []struct {
		in      string
		want    Lang
		wantErr bool
	}{
		{"", Spanish, false},
		{"es", Spanish, false},
		{"ES-co", Spanish, false},
		{"en_US", English, false},
		{" en ", English, false},
		{"fr", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLang(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogsAreComplete(t *testing.T) {
	steps := []string{"address", "newClient", "contact", "date", "time", "confirm"}
	for lang, m := range catalog {
		for _, s := range steps {
			assert.NotEmpty(t, m.Step(s), "%s step %s", lang, s)
		}
		for _, status := range []string{"scheduled", "completed", "cancelled"} {
			assert.NotEqual(t, status, m.Status(status), "%s status %s", lang, status)
		}
	}
	assert.Equal(t, "Agendar Cita", For("xx").Title)
	assert.Equal(t, "Schedule Appointment", For(English).Title)
}

func TestFill(t *testing.T) {
	got := Fill(For(Spanish).BookedDescription, "date", "lunes, 10 de marzo de 2025", "time", "2:30 PM")
	assert.Equal(t, "Tu cita ha sido confirmada para el lunes, 10 de marzo de 2025 a las 2:30 PM.", got)
	assert.Equal(t, "{x}", Fill("{x}"))
}

func TestTime12h(t *testing.T) {
	cases := map[string]string{
		"09:00": "9:00 AM",
		"12:00": "12:00 PM",
		"14:30": "2:30 PM",
		"00:15": "12:15 AM",
		"bad":   "bad",
	}
	for in, want := range cases {
		assert.Equal(t, want, Time12h(in), in)
	}
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "lunes, 10 de marzo de 2025", LongDate("2025-03-10", Spanish))
	assert.Equal(t, "Monday, March 10, 2025", LongDate("2025-03-10", English))
	assert.Equal(t, "sábado, 1 de febrero de 2025", LongDate("2025-02-01", Spanish))
	assert.Equal(t, "nope", LongDate("nope", Spanish))
	assert.Equal(t, "lun 10 mar", ShortDate("2025-03-10", Spanish))
	assert.Equal(t, "Mon Mar 10", ShortDate("2025-03-10", English))
	assert.Equal(t, "sáb 1 feb", ShortDate("2025-02-01", Spanish))
}

func TestPrice(t *testing.T) {
	cases := map[float64]string{
		0:       "$0",
		999:     "$999",
		12000:   "$12.000",
		25000:   "$25.000",
		1234567: "$1.234.567",
		-5000:   "-$5.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Price(in))
	}
}

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/573001234567", WhatsAppLink("+57 300 123 4567"))
	assert.Equal(t, "https://wa.me/13055550100", WhatsAppLink("(1) 305-555.0100"))
}

func TestProblem(t *testing.T) {
	es := For(Spanish)
	assert.Equal(t, "El nombre es requerido", es.Problem("name_required"))
	assert.Equal(t, "Por favor ingresa un número de teléfono válido", es.Problem("phone_invalid"))
	assert.Equal(t, "That time is no longer available", For(English).Problem("time_unavailable"))
	assert.Equal(t, "mystery", es.Problem("mystery"))
}
