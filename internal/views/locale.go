package views

import (
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout é o formato gravado em Appointment.Date.
const DateLayout = "2006-01-02"

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var monthShort = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// ParseDate lê uma data YYYY-MM-DD à meia-noite UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthTitle gera "Março de 2025".
func MonthTitle(year int, month time.Month) string {
	return Capitalize(monthNames[month-1] + " de " + strconv.Itoa(year))
}

// LongDate gera "Segunda-feira, 10 de março".
func LongDate(t time.Time) string {
	return Capitalize(weekdayNames[t.Weekday()] + ", " + strconv.Itoa(t.Day()) + " de " + monthNames[t.Month()-1])
}

// ShortMonth gera o mês abreviado sem ponto final ("mar").
func ShortMonth(m time.Month) string {
	return monthShort[m-1]
}

// Capitalize põe em maiúscula a primeira runa de s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
