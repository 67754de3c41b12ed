package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/viera97/calendar-appointments/internal/constants"
)

var (
	esWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	esMonths   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// Time12h renders "14:30" as "2:30 PM". Unparseable input is returned as is.
func Time12h(hhmm string) string {
	t, err := time.Parse(constants.TimeFormat, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

// LongDate renders a YYYY-MM-DD date as "lunes, 10 de marzo de 2025" or
// "Monday, March 10, 2025".
func LongDate(date string, lang Lang) string {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return date
	}
	if lang == English {
		return t.Format("Monday, January 2, 2006")
	}
	return fmt.Sprintf("%s, %d de %s de %d", esWeekdays[t.Weekday()], t.Day(), esMonths[t.Month()-1], t.Year())
}

// ShortDate renders a date as "lun 10 mar" or "Mon Mar 10" for compact lists.
func ShortDate(date string, lang Lang) string {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return date
	}
	if lang == English {
		return t.Format("Mon Jan 2")
	}
	return fmt.Sprintf("%s %d %s", abbrev(esWeekdays[t.Weekday()]), t.Day(), abbrev(esMonths[t.Month()-1]))
}

func abbrev(s string) string {
	r := []rune(s)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Price renders a peso amount with dot thousands separators: 25000 -> "$25.000".
func Price(amount float64) string {
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}

// WhatsAppLink builds a wa.me link from a phone number in any common notation.
func WhatsAppLink(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "https://wa.me/" + b.String()
}
