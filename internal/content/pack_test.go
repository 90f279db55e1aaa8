package content

import (
	"encoding/json"
	"testing"

	"drone-assembly-service/internal/domain"
)

func TestBuiltinPackValid(t *testing.T) {
	if err := Builtin().Validate(); err != nil {
		t.Fatalf("builtin pack invalid: %v", err)
	}
}

func TestValidateRejectsMissingKind(t *testing.T) {
	pack := Builtin()
	delete(pack.Lessons, domain.KindAntenna)
	if err := pack.Validate(); err == nil {
		t.Fatalf("expected validation failure for missing kind")
	}
}

func TestValidateRejectsBadCorrectIndex(t *testing.T) {
	pack := Builtin()
	lesson := pack.Lessons[domain.KindMotor]
	lesson.Questions = []domain.Question{{Prompt: "?", Options: []string{"a", "b"}, CorrectIndex: 5}}
	pack.Lessons[domain.KindMotor] = lesson
	if err := pack.Validate(); err == nil {
		t.Fatalf("expected validation failure for out-of-range correct index")
	}
}

func TestPackJSONRoundTrip(t *testing.T) {
	blob, err := json.Marshal(Builtin())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var pack Pack
	if err := json.Unmarshal(blob, &pack); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := pack.Validate(); err != nil {
		t.Fatalf("round-tripped pack invalid: %v", err)
	}
	if pack.Lessons[domain.KindPropeller].Title != "Propeller" {
		t.Fatalf("unexpected lesson content: %+v", pack.Lessons[domain.KindPropeller])
	}
}
