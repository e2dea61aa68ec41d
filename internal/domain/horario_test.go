package domain

import "testing"

func TestParseHorario(t *testing.T) {
	h, err := ParseHorario("09:30")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.Hora() != 9 || h.Minuto() != 30 {
		t.Fatalf("expected 09:30, got %s", h)
	}

	casos := []string{"9:30", "09:60", "24:00", "0930", "09:3a", "0a:30", "", "09:305", "-9:30"}
	for _, s := range casos {
		if _, err := ParseHorario(s); err == nil {
			t.Fatalf("expected error parsing %q, got none", s)
		}
	}
}

func TestParseHorarioRejectsTrailingGarbage(t *testing.T) {
	// A non-digit after a valid prefix must fail, never truncate to 09:03.
	h, err := ParseHorario("09:3a")
	if err == nil {
		t.Fatalf("expected error, got %s", h)
	}
}

func TestHorarioRestarMinutosClampsAtMidnight(t *testing.T) {
	h := MustHorario("00:30")
	if got := h.RestarMinutos(60); got.String() != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
	if got := MustHorario("10:00").RestarMinutos(60); got.String() != "09:00" {
		t.Fatalf("expected 09:00, got %s", got)
	}
}

func TestHorarioSumarMinutosClampsAtEndOfDay(t *testing.T) {
	h := MustHorario("23:30")
	if got := h.SumarMinutos(60); got.String() != "23:59" {
		t.Fatalf("expected 23:59, got %s", got)
	}
}

func TestHorarioAntes(t *testing.T) {
	a := MustHorario("09:00")
	b := MustHorario("10:00")
	if !a.Antes(b) {
		t.Fatal("expected 09:00 before 10:00")
	}
	if b.Antes(a) {
		t.Fatal("expected 10:00 not before 09:00")
	}
	if a.Antes(a) {
		t.Fatal("expected a time not before itself")
	}
}

func TestHorarioTextRoundTrip(t *testing.T) {
	h := MustHorario("08:05")
	b, err := h.MarshalText()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(b) != "08:05" {
		t.Fatalf("expected 08:05, got %s", b)
	}

	var parsed Horario
	if err := parsed.UnmarshalText(b); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed != h {
		t.Fatalf("expected %s, got %s", h, parsed)
	}
}
