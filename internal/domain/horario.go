package domain

import (
	"fmt"
)

// Immutable time of day with minute precision.
// Replaces "HH:MM" string arithmetic with a proper value type; all
// offset math clamps to the 00:00-23:59 range (no day rollover).
type Horario struct {
	minutos int
}

// NuevoHorario builds a Horario from hour and minute components.
func NuevoHorario(hora, minuto int) (Horario, error) {
	if hora < 0 || hora > 23 || minuto < 0 || minuto > 59 {
		return Horario{}, fmt.Errorf("horario: out of range %02d:%02d", hora, minuto)
	}
	return Horario{minutos: hora*60 + minuto}, nil
}

// ParseHorario parses a "HH:MM" string. Exactly two digits, a colon,
// two digits; anything else is rejected rather than truncated.
func ParseHorario(s string) (Horario, error) {
	if len(s) != 5 || s[2] != ':' {
		return Horario{}, fmt.Errorf("horario: invalid format %q (want HH:MM)", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Horario{}, fmt.Errorf("horario: invalid format %q (want HH:MM)", s)
		}
	}
	hora := int(s[0]-'0')*10 + int(s[1]-'0')
	minuto := int(s[3]-'0')*10 + int(s[4]-'0')
	return NuevoHorario(hora, minuto)
}

// MustHorario is a fixture helper; it panics on invalid input.
func MustHorario(s string) Horario {
	h, err := ParseHorario(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Horario) Hora() int   { return h.minutos / 60 }
func (h Horario) Minuto() int { return h.minutos % 60 }

// Minutos returns minutes since midnight, the sort key for stops.
func (h Horario) Minutos() int { return h.minutos }

func (h Horario) Antes(otro Horario) bool { return h.minutos < otro.minutos }

// RestarMinutos subtracts n minutes, clamped at 00:00.
func (h Horario) RestarMinutos(n int) Horario {
	m := h.minutos - n
	if m < 0 {
		m = 0
	}
	return Horario{minutos: m}
}

// SumarMinutos adds n minutes, clamped at 23:59.
func (h Horario) SumarMinutos(n int) Horario {
	m := h.minutos + n
	if m > 23*60+59 {
		m = 23*60 + 59
	}
	return Horario{minutos: m}
}

func (h Horario) String() string {
	return fmt.Sprintf("%02d:%02d", h.Hora(), h.Minuto())
}

func (h Horario) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Horario) UnmarshalText(b []byte) error {
	parsed, err := ParseHorario(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
