package util

import (
	"reflect"
	"testing"
)

func TestParseSymbolsCSV(t *testing.T) {
	got := ParseSymbolsCSV(" msft, AAPL,,ibm , MSFT ")
	want := []string{"MSFT", "AAPL", "IBM"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if len(ParseSymbolsCSV("")) != 0 {
		t.Fatalf("expected no symbols")
	}
}

func TestParseIntDefaultAndClamp(t *testing.T) {
	if ParseIntDefault("x", 24) != 24 {
		t.Fatalf("expected default")
	}
	if ParseIntDefault(" 12 ", 24) != 12 {
		t.Fatalf("expected 12")
	}
	if ClampInt(0, 1, 72) != 1 || ClampInt(100, 1, 72) != 72 || ClampInt(5, 1, 72) != 5 {
		t.Fatalf("clamp out of range")
	}
}
