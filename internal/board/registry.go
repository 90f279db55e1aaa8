// Package board holds the static schematic data: drop zones with their
// normalized anchors and allow-lists, and the staging layout parts start from.
package board

import (
	"fmt"

	"drone-assembly-service/internal/domain"
)

// Registry is the fixed set of drop targets. Iteration order is the
// declaration order below; nearest-zone ties break on the first zone at the
// minimum distance, so this order is part of the game rules.
type Registry struct {
	zones  []domain.Zone
	byKey  map[string]*domain.Zone
	staged []domain.Part
}

func kinds(ks ...domain.Kind) []domain.Kind { return ks }

var defaultZones = []domain.Zone{
	{Key: "z_prop_tl", DisplayName: "Propeller (Top-Left)", Position: domain.Point{X: 0.16, Y: 0.27}, AllowedKinds: kinds(domain.KindPropeller)},
	{Key: "z_prop_tr", DisplayName: "Propeller (Top-Right)", Position: domain.Point{X: 0.86, Y: 0.27}, AllowedKinds: kinds(domain.KindPropeller)},
	{Key: "z_prop_bl", DisplayName: "Propeller (Bottom-Left)", Position: domain.Point{X: 0.19, Y: 0.64}, AllowedKinds: kinds(domain.KindPropeller)},
	{Key: "z_prop_br", DisplayName: "Propeller (Bottom-Right)", Position: domain.Point{X: 0.83, Y: 0.64}, AllowedKinds: kinds(domain.KindPropeller)},

	{Key: "z_motor_tl", DisplayName: "Motor (Top-Left)", Position: domain.Point{X: 0.19, Y: 0.36}, AllowedKinds: kinds(domain.KindMotor)},
	{Key: "z_motor_tr", DisplayName: "Motor (Top-Right)", Position: domain.Point{X: 0.86, Y: 0.36}, AllowedKinds: kinds(domain.KindMotor)},
	{Key: "z_motor_bl", DisplayName: "Motor (Bottom-Left)", Position: domain.Point{X: 0.22, Y: 0.73}, AllowedKinds: kinds(domain.KindMotor)},
	{Key: "z_motor_br", DisplayName: "Motor (Bottom-Right)", Position: domain.Point{X: 0.81, Y: 0.73}, AllowedKinds: kinds(domain.KindMotor)},

	{Key: "z_esc_tl", DisplayName: "ESC (Top-Left Arm)", Position: domain.Point{X: 0.31, Y: 0.42}, AllowedKinds: kinds(domain.KindESC)},
	{Key: "z_esc_tr", DisplayName: "ESC (Top-Right Arm)", Position: domain.Point{X: 0.70, Y: 0.42}, AllowedKinds: kinds(domain.KindESC)},
	{Key: "z_esc_bl", DisplayName: "ESC (Bottom-Left Arm)", Position: domain.Point{X: 0.33, Y: 0.69}, AllowedKinds: kinds(domain.KindESC)},
	{Key: "z_esc_br", DisplayName: "ESC (Bottom-Right Arm)", Position: domain.Point{X: 0.69, Y: 0.69}, AllowedKinds: kinds(domain.KindESC)},

	{Key: "z_receiver", DisplayName: "Control Receiver", Position: domain.Point{X: 0.43, Y: 0.33}, AllowedKinds: kinds(domain.KindReceiver)},
	{Key: "z_tx", DisplayName: "FPV Transmitter", Position: domain.Point{X: 0.60, Y: 0.34}, AllowedKinds: kinds(domain.KindVideoTransmitter)},
	{Key: "z_antenna", DisplayName: "Antenna", Position: domain.Point{X: 0.52, Y: 0.16}, AllowedKinds: kinds(domain.KindAntenna)},
	{Key: "z_pdb", DisplayName: "Power Distribution Panel", Position: domain.Point{X: 0.53, Y: 0.49}, AllowedKinds: kinds(domain.KindPDB)},
	{Key: "z_fc", DisplayName: "Flight Controller", Position: domain.Point{X: 0.50, Y: 0.60}, AllowedKinds: kinds(domain.KindFlightController)},
	{Key: "z_camera", DisplayName: "FPV Camera", Position: domain.Point{X: 0.50, Y: 0.82}, AllowedKinds: kinds(domain.KindCamera)},
}

type partSpec struct {
	id    string
	label string
	kind  domain.Kind
}

var defaultParts = []partSpec{
	{"prop-1", "Propeller 1", domain.KindPropeller},
	{"prop-2", "Propeller 2", domain.KindPropeller},
	{"prop-3", "Propeller 3", domain.KindPropeller},
	{"prop-4", "Propeller 4", domain.KindPropeller},
	{"motor-1", "Motor 1", domain.KindMotor},
	{"motor-2", "Motor 2", domain.KindMotor},
	{"motor-3", "Motor 3", domain.KindMotor},
	{"motor-4", "Motor 4", domain.KindMotor},
	{"esc-1", "ESC 1", domain.KindESC},
	{"esc-2", "ESC 2", domain.KindESC},
	{"esc-3", "ESC 3", domain.KindESC},
	{"esc-4", "ESC 4", domain.KindESC},
	{"pdb", "Power Distribution Panel", domain.KindPDB},
	{"fc", "Flight Controller", domain.KindFlightController},
	{"receiver", "Control Receiver", domain.KindReceiver},
	{"vtx", "FPV Transmitter", domain.KindVideoTransmitter},
	{"antenna", "Antenna", domain.KindAntenna},
	{"camera", "FPV Camera", domain.KindCamera},
}

var defaultRegistry = newRegistry(defaultZones, defaultParts)

// Default returns the drone schematic registry.
func Default() *Registry {
	return defaultRegistry
}

func newRegistry(zones []domain.Zone, parts []partSpec) *Registry {
	r := &Registry{
		zones: zones,
		byKey: make(map[string]*domain.Zone, len(zones)),
	}
	for i := range r.zones {
		z := &r.zones[i]
		if len(z.AllowedKinds) == 0 {
			panic(fmt.Sprintf("board: zone %s has no allowed kinds", z.Key))
		}
		if _, dup := r.byKey[z.Key]; dup {
			panic(fmt.Sprintf("board: duplicate zone key %s", z.Key))
		}
		r.byKey[z.Key] = z
	}
	r.staged = stagingLayout(parts)
	return r
}

// stagingLayout lays the parts bin out as two columns along the left edge of
// the normalized board, top to bottom.
func stagingLayout(parts []partSpec) []domain.Part {
	const (
		col0    = 0.03
		col1    = 0.09
		top     = 0.06
		rowStep = 0.10
	)
	staged := make([]domain.Part, 0, len(parts))
	rows := (len(parts) + 1) / 2
	for i, p := range parts {
		x := col0
		if i >= rows {
			x = col1
		}
		y := top + rowStep*float64(i%rows)
		staged = append(staged, domain.Part{
			ID:       p.id,
			Label:    p.label,
			Kind:     p.kind,
			Position: domain.Point{X: x, Y: y},
		})
	}
	return staged
}

// Zones returns all zones in registry order.
func (r *Registry) Zones() []domain.Zone {
	out := make([]domain.Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

// ZoneCount returns the number of zones.
func (r *Registry) ZoneCount() int { return len(r.zones) }

// ZoneByKey resolves a zone; unknown keys are a programmer error surfaced as
// domain.ErrZoneNotFound.
func (r *Registry) ZoneByKey(key string) (domain.Zone, error) {
	if z, ok := r.byKey[key]; ok {
		return *z, nil
	}
	return domain.Zone{}, fmt.Errorf("%w: %q", domain.ErrZoneNotFound, key)
}

// KindAllowed reports whether the zone accepts the kind.
func (r *Registry) KindAllowed(zoneKey string, kind domain.Kind) (bool, error) {
	z, err := r.ZoneByKey(zoneKey)
	if err != nil {
		return false, err
	}
	return z.Allows(kind), nil
}

// Nearest returns the zone closest to p and its distance. Ties resolve to the
// first zone in registry order at the minimum distance.
func (r *Registry) Nearest(p domain.Point) (domain.Zone, float64) {
	best := r.zones[0]
	bestDist := p.DistanceTo(best.Position)
	for _, z := range r.zones[1:] {
		if d := p.DistanceTo(z.Position); d < bestDist {
			best, bestDist = z, d
		}
	}
	return best, bestDist
}

// StagedParts returns fresh copies of the initial part layout.
func (r *Registry) StagedParts() []domain.Part {
	out := make([]domain.Part, len(r.staged))
	copy(out, r.staged)
	return out
}
