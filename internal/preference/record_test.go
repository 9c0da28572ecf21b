package preference

import (
	"reflect"
	"testing"
)

func TestLogAppendIsMonotonic(t *testing.T) {
	log := NewLog()
	if log.Len() != 0 || len(log.History()) != 0 {
		t.Fatal("expected empty log")
	}

	for i, variant := range []string{"variant1", "variant3", "variant1"} {
		log.Append(Record{Question: "q", Category: "Math Tutor", ChosenVariant: variant, Provider: "gemini"})
		if got := len(log.History()); got != i+1 {
			t.Fatalf("after %d appends history has %d records", i+1, got)
		}
	}

	history := log.History()
	if history[0].ChosenVariant != "variant1" || history[1].ChosenVariant != "variant3" {
		t.Fatalf("history out of insertion order: %#v", history)
	}
}

func TestLogHistoryIsStableAndDetached(t *testing.T) {
	log := NewLog()
	log.Append(Record{Question: "a", ChosenVariant: "v1"})
	log.Append(Record{Question: "b", ChosenVariant: "v2"})

	first := log.History()
	second := log.History()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("history changed without mutation: %#v vs %#v", first, second)
	}

	first[0].ChosenVariant = "tampered"
	if log.History()[0].ChosenVariant != "v1" {
		t.Fatal("History must return a copy")
	}
}

func TestLogClear(t *testing.T) {
	log := NewLog()
	log.Append(Record{Question: "a"})
	log.Clear()
	if log.Len() != 0 {
		t.Fatalf("expected cleared log, got %d records", log.Len())
	}
	log.Append(Record{Question: "b"})
	if h := log.History(); len(h) != 1 || h[0].Question != "b" {
		t.Fatalf("unexpected history after clear: %#v", h)
	}
}
