package domain

import "fmt"

// Kind classifies a part. It is a closed enumeration: zone rules and lesson
// banks are keyed by Kind, so a typo'd tag must fail at parse time rather
// than silently desynchronize them.
type Kind int

const (
	KindPropeller Kind = iota
	KindMotor
	KindESC
	KindPDB
	KindFlightController
	KindReceiver
	KindVideoTransmitter
	KindAntenna
	KindCamera
)

// AllKinds lists every part kind in declaration order.
var AllKinds = []Kind{
	KindPropeller,
	KindMotor,
	KindESC,
	KindPDB,
	KindFlightController,
	KindReceiver,
	KindVideoTransmitter,
	KindAntenna,
	KindCamera,
}

var kindTags = map[Kind]string{
	KindPropeller:        "propeller",
	KindMotor:            "motor",
	KindESC:              "esc",
	KindPDB:              "pdb",
	KindFlightController: "flight-controller",
	KindReceiver:         "receiver",
	KindVideoTransmitter: "video-transmitter",
	KindAntenna:          "antenna",
	KindCamera:           "camera",
}

var kindsByTag = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind tag; unknown tags return ErrKindUnknown.
func ParseKind(tag string) (Kind, error) {
	if k, ok := kindsByTag[tag]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrKindUnknown, tag)
}

// MarshalText lets Kind serve as a JSON object key and string value.
func (k Kind) MarshalText() ([]byte, error) {
	tag, ok := kindTags[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKindUnknown, int(k))
	}
	return []byte(tag), nil
}

func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
