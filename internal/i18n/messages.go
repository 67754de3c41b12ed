// Package i18n holds the user-facing strings and the locale-aware formatting
// of dates, times and prices.
package i18n

import (
	"fmt"
	"strings"
)

type Lang string

const (
	Spanish Lang = "es"
	English Lang = "en"
)

// Default is the language used when none is configured.
const Default = Spanish

// ParseLang accepts "es", "en" and regional forms such as "es-CO".
func ParseLang(s string) (Lang, error) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	base, _, _ = strings.Cut(base, "_")
	switch Lang(base) {
	case "":
		return Default, nil
	case Spanish, English:
		return Lang(base), nil
	}
	return "", fmt.Errorf("unsupported language %q (use es or en)", s)
}

type Messages struct {
	Title string
	// Steps describes each wizard step, keyed by step name.
	Steps map[string]string

	AddressQuestion string
	CanGo           string
	CantGo          string

	ClientQuestion string
	NewClient      string
	ExistingClient string

	ContactTitle     string
	NameLabel        string
	NamePlaceholder  string
	PhoneLabel       string
	PhonePlaceholder string
	Continue         string
	NameRequired     string
	PhoneRequired    string
	PhoneInvalid     string

	DateTitle   string
	DateInvalid string
	DatePast    string
	TimeTitle   string
	TimeTaken   string
	NoSlots     string
	Confirm     string

	BookedTitle       string
	BookedDescription string
	PartialNotice     string
	FailureNotice     string
	GenericFailure    string
	Submitting        string

	CancelTitle    string
	CancelQuestion string
	Cancelled      string
	CancelPartial  string
	CancelFailure  string

	ClearHistoryQuestion string
	HistoryCleared       string

	Reminder string

	TabBook         string
	TabAppointments string
	TabServices     string
	Upcoming        string
	History         string
	NoAppointments  string
	Statuses        map[string]string
	Minutes         string
}

var catalog = map[Lang]*Messages{
	Spanish: {
		Title: "Agendar Cita",
		Steps: map[string]string{
			"address":   "Primero, confirmemos tu ubicación",
			"newClient": "¿Es tu primera vez con nosotros?",
			"contact":   "Necesitamos tus datos de contacto",
			"date":      "Consulta personalizada - Selecciona una fecha",
			"time":      "Elige tu horario preferido",
			"confirm":   "Revisa y confirma tu cita",
		},
		AddressQuestion: "¿Puedes dirigirte a:",
		CanGo:           "Sí, puedo ir",
		CantGo:          "No puedo",

		ClientQuestion: "¿Eres cliente nuevo?",
		NewClient:      "Sí, soy nuevo",
		ExistingClient: "Ya soy cliente",

		ContactTitle:     "Información de Contacto",
		NameLabel:        "Nombre completo",
		NamePlaceholder:  "Ingresa tu nombre completo",
		PhoneLabel:       "Número de teléfono",
		PhonePlaceholder: "Ej: +1234567890 o 123-456-7890",
		Continue:         "Continuar",
		NameRequired:     "El nombre es requerido",
		PhoneRequired:    "El teléfono es requerido",
		PhoneInvalid:     "Por favor ingresa un número de teléfono válido",

		DateTitle:   "Selecciona la fecha de tu cita",
		DateInvalid: "Fecha inválida, usa el formato AAAA-MM-DD",
		DatePast:    "La fecha no puede estar en el pasado",
		TimeTitle:   "Horarios disponibles",
		TimeTaken:   "Ese horario ya no está disponible",
		NoSlots:     "No hay horarios disponibles para esta fecha",
		Confirm:     "Agendar Cita",

		BookedTitle:       "¡Cita agendada!",
		BookedDescription: "Tu cita ha sido confirmada para el {date} a las {time}.",
		PartialNotice:     "Tu cita fue guardada, pero no se pudo sincronizar con: {providers}.",
		FailureNotice:     "Error al agendar la cita. Por favor intenta de nuevo.",
		GenericFailure:    "Ocurrió un error inesperado. Por favor intenta de nuevo.",
		Submitting:        "Agendando...",

		CancelTitle:    "Cancelar Cita",
		CancelQuestion: "¿Estás seguro de que quieres cancelar la cita de {service}?",
		Cancelled:      "Cita cancelada exitosamente.",
		CancelPartial:  "Cita cancelada, pero no se pudo eliminar de: {providers}.",
		CancelFailure:  "Error al cancelar la cita. Por favor intenta de nuevo.",

		ClearHistoryQuestion: "¿Borrar todas las citas completadas y canceladas?",
		HistoryCleared:       "Historial eliminado.",

		Reminder: "Recordatorio: {service} de {client} a las {time}",

		TabBook:         "Agendar",
		TabAppointments: "Mis Citas",
		TabServices:     "Servicios",
		Upcoming:        "Próximas citas",
		History:         "Historial",
		NoAppointments:  "No tienes citas",
		Statuses: map[string]string{
			"scheduled": "Agendada",
			"completed": "Completada",
			"cancelled": "Cancelada",
		},
		Minutes: "min",
	},
	English: {
		Title: "Schedule Appointment",
		Steps: map[string]string{
			"address":   "First, let's confirm your location",
			"newClient": "Is this your first time with us?",
			"contact":   "We need your contact information",
			"date":      "Personalized consultation - Select a date",
			"time":      "Choose your preferred time",
			"confirm":   "Review and confirm your appointment",
		},
		AddressQuestion: "Can you go to:",
		CanGo:           "Yes, I can go",
		CantGo:          "I can't",

		ClientQuestion: "Are you a new client?",
		NewClient:      "Yes, I'm new",
		ExistingClient: "I'm already a client",

		ContactTitle:     "Contact Information",
		NameLabel:        "Full name",
		NamePlaceholder:  "Enter your full name",
		PhoneLabel:       "Phone number",
		PhonePlaceholder: "Ex: +1234567890 or 123-456-7890",
		Continue:         "Continue",
		NameRequired:     "Name is required",
		PhoneRequired:    "Phone is required",
		PhoneInvalid:     "Please enter a valid phone number",

		DateTitle:   "Select your appointment date",
		DateInvalid: "Invalid date, use the YYYY-MM-DD format",
		DatePast:    "The date cannot be in the past",
		TimeTitle:   "Available times",
		TimeTaken:   "That time is no longer available",
		NoSlots:     "No times available for this date",
		Confirm:     "Schedule Appointment",

		BookedTitle:       "Appointment scheduled!",
		BookedDescription: "Your appointment has been confirmed for {date} at {time}.",
		PartialNotice:     "Your appointment was saved, but could not be synced to: {providers}.",
		FailureNotice:     "Error scheduling the appointment. Please try again.",
		GenericFailure:    "Something unexpected went wrong. Please try again.",
		Submitting:        "Scheduling...",

		CancelTitle:    "Cancel Appointment",
		CancelQuestion: "Are you sure you want to cancel the {service} appointment?",
		Cancelled:      "Appointment cancelled successfully.",
		CancelPartial:  "Appointment cancelled, but it could not be removed from: {providers}.",
		CancelFailure:  "Error cancelling the appointment. Please try again.",

		ClearHistoryQuestion: "Delete all completed and cancelled appointments?",
		HistoryCleared:       "History cleared.",

		Reminder: "Reminder: {service} for {client} at {time}",

		TabBook:         "Book",
		TabAppointments: "My Appointments",
		TabServices:     "Services",
		Upcoming:        "Upcoming",
		History:         "History",
		NoAppointments:  "You have no appointments",
		Statuses: map[string]string{
			"scheduled": "Scheduled",
			"completed": "Completed",
			"cancelled": "Cancelled",
		},
		Minutes: "min",
	},
}

// For returns the messages of lang, falling back to Default.
func For(lang Lang) *Messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[Default]
}

// Fill replaces {key} placeholders in s. Pairs are key, value.
func Fill(s string, pairs ...string) string {
	if len(pairs) < 2 {
		return s
	}
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(s)
}

// Status returns the localized label of an appointment status.
func (m *Messages) Status(status string) string {
	if s, ok := m.Statuses[status]; ok {
		return s
	}
	return status
}

// Step returns the description of a wizard step.
func (m *Messages) Step(step string) string {
	return m.Steps[step]
}

// Problem returns the message for a field validation code.
func (m *Messages) Problem(code string) string {
	switch code {
	case "name_required":
		return m.NameRequired
	case "phone_required":
		return m.PhoneRequired
	case "phone_invalid":
		return m.PhoneInvalid
	case "date_invalid":
		return m.DateInvalid
	case "date_past":
		return m.DatePast
	case "time_unavailable":
		return m.TimeTaken
	}
	return code
}
