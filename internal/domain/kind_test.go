package domain

import (
	"encoding/json"
	"testing"
)

func TestKindRoundTrip(t *testing.T) {
	for _, k := range AllKinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("parse %s: %v", k, err)
		}
		if parsed != k {
			t.Fatalf("round trip mismatch: %s -> %s", k, parsed)
		}
	}
}

func TestParseKindRejectsUnknownTag(t *testing.T) {
	if _, err := ParseKind("warp-drive"); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestKindAsJSONMapKey(t *testing.T) {
	in := map[Kind]int{KindFlightController: 1, KindESC: 2}
	blob, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[Kind]int
	if err := json.Unmarshal(blob, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[KindFlightController] != 1 || out[KindESC] != 2 {
		t.Fatalf("map round trip mismatch: %v", out)
	}
}
