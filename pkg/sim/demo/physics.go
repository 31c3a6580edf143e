package demo

import (
	"math"
	"math/rand"
)

// gearFloors[i] is the lowest speed (km/h) at which gear i+1 is selected.
var gearFloors = [8]float64{0, 85, 125, 160, 195, 230, 265, 300}

const (
	topSpeed   = 345.0
	idleRPM    = 4000.0
	shiftRPM   = 10200.0 // where gears 2..8 land after an upshift
	redlineRPM = 12000.0
	maxRPM     = 13000

	revLightsStart = 10000.0
	revLightsSpan  = 2000.0
	flashThreshold = 90
)

// GearFor maps a speed to a gear. Below 1 km/h the car sits in neutral.
func GearFor(speed float64) int8 {
	if speed < 1 {
		return 0
	}
	gear := 1
	for i, floor := range gearFloors {
		if speed >= floor {
			gear = i + 1
		}
	}
	return int8(gear)
}

// RPMFor interpolates RPM inside the gear's speed band.
func RPMFor(speed float64, gear int8) float64 {
	if gear <= 0 {
		return idleRPM
	}
	lo := gearFloors[gear-1]
	hi := topSpeed
	if int(gear) < len(gearFloors) {
		hi = gearFloors[gear]
	}
	frac := (speed - lo) / (hi - lo)
	frac = min(max(frac, 0), 1)

	base := shiftRPM
	if gear == 1 {
		base = idleRPM
	}
	return base + frac*(redlineRPM-base)
}

// noiseAmplitude returns the RPM and speed jitter for the current regime:
// wide at low speed and near the redline, narrow at cruise.
func noiseAmplitude(speed, rpm float64) (rpmAmp, speedAmp float64) {
	switch {
	case speed < 60:
		return 220, 3
	case rpm > 11500:
		return 260, 1
	}
	return 60, 0.6
}

// RevLightsPercent maps RPM onto the rev-light strip.
func RevLightsPercent(rpm float64) uint8 {
	p := (rpm - revLightsStart) / revLightsSpan * 100
	return uint8(math.Round(min(max(p, 0), 100)))
}

// Dynamics is the physics output for one tick.
type Dynamics struct {
	Speed     uint16
	Gear      int8
	RPM       uint16
	RevLights uint8
}

// Physics turns a base speed into gear, RPM and rev lights. With a nil rng
// the result is deterministic.
type Physics struct {
	rng *rand.Rand
	// FlashProbability is the per-tick chance that near-redline rev lights
	// snap to 100%. Cosmetic only.
	FlashProbability float64
}

// NewPhysics returns a physics model. A nil rng disables noise and flashes.
func NewPhysics(rng *rand.Rand, flashProbability float64) *Physics {
	return &Physics{rng: rng, FlashProbability: flashProbability}
}

// Step computes the dynamics for speed.
func (p *Physics) Step(speed float64) Dynamics {
	gear := GearFor(speed)
	rpm := RPMFor(speed, gear)

	if p.rng != nil && gear != 0 {
		rpmAmp, speedAmp := noiseAmplitude(speed, rpm)
		rpm += p.jitter(rpmAmp)
		speed += p.jitter(speedAmp)
	}
	rpm = math.Round(min(max(rpm, 0), maxRPM))
	speed = max(speed, 0)

	lights := RevLightsPercent(rpm)
	if p.rng != nil && lights >= flashThreshold && p.rng.Float64() < p.FlashProbability {
		lights = 100
	}

	return Dynamics{
		Speed:     uint16(math.Round(speed)),
		Gear:      gear,
		RPM:       uint16(rpm),
		RevLights: lights,
	}
}

func (p *Physics) jitter(amp float64) float64 {
	return (p.rng.Float64()*2 - 1) * amp
}
