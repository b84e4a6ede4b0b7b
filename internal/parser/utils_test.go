package parser

import "testing"

func TestColumnToIndex_Letters(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"A":  1,
		"H":  8,
		"K":  11,
		"Z":  26,
		"AA": 27,
		"AF": 32,
		"AK": 37,
		"af": 32,
	}
	for col, want := range cases {
		got, err := ColumnToIndex(col)
		if err != nil {
			t.Fatalf("ColumnToIndex(%q) error: %v", col, err)
		}
		if got != want {
			t.Fatalf("ColumnToIndex(%q) want=%d got=%d", col, want, got)
		}
	}
}

func TestColumnToIndex_Invalid(t *testing.T) {
	t.Parallel()

	for _, col := range []string{"", "A1", "-"} {
		if _, err := ColumnToIndex(col); err == nil {
			t.Fatalf("ColumnToIndex(%q) expected error", col)
		}
	}
}

func TestIndexToColumn_RoundTrip(t *testing.T) {
	t.Parallel()

	for i := 1; i <= 40; i++ {
		name, err := IndexToColumn(i)
		if err != nil {
			t.Fatalf("IndexToColumn(%d) error: %v", i, err)
		}
		back, err := ColumnToIndex(name)
		if err != nil || back != i {
			t.Fatalf("round trip %d -> %s -> %d (%v)", i, name, back, err)
		}
	}
}

func TestIsPerUnit_Sentinels(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"Je Mast", "je mast", "  Je Masttyp ", "JE MAST (Fundament)"} {
		if !IsPerUnit(v) {
			t.Fatalf("IsPerUnit(%q) want true", v)
		}
	}
	for _, v := range []string{"", "Einzeln", "pro Mast", "Je Abschnitt"} {
		if IsPerUnit(v) {
			t.Fatalf("IsPerUnit(%q) want false", v)
		}
	}
}

func TestEqualFold_Umlauts(t *testing.T) {
	t.Parallel()

	if !EqualFold("Master Document List", "master document list") {
		t.Fatalf("expected case-insensitive match")
	}
	if !EqualFold("GRÜNDUNG", "gründung") {
		t.Fatalf("expected umlaut fold match")
	}
}
