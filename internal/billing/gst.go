package billing

// BusinessUnit identifies one of the venues sharing the system.
type BusinessUnit string

const (
	UnitCafe   BusinessUnit = "cafe"
	UnitBar    BusinessUnit = "bar"
	UnitHotel  BusinessUnit = "hotel"
	UnitGarden BusinessUnit = "garden"
)

var BusinessUnits = []BusinessUnit{UnitCafe, UnitBar, UnitHotel, UnitGarden}

func (u BusinessUnit) Valid() bool {
	for _, v := range BusinessUnits {
		if u == v {
			return true
		}
	}
	return false
}

type UnitGST struct {
	Enabled bool    `json:"gst_enabled"`
	Percent float64 `json:"gst_percentage"`
}

// GSTPolicy is an immutable snapshot of the GST settings. Build it once per
// request and pass it down; do not re-read settings mid-calculation.
type GSTPolicy struct {
	Enabled bool
	units   map[BusinessUnit]UnitGST
}

func NewGSTPolicy(enabled bool, units map[BusinessUnit]UnitGST) GSTPolicy {
	copied := make(map[BusinessUnit]UnitGST, len(units))
	for k, v := range units {
		copied[k] = v
	}
	return GSTPolicy{Enabled: enabled, units: copied}
}

// Unit returns the stored setting for a unit, regardless of the global gate.
func (p GSTPolicy) Unit(u BusinessUnit) UnitGST {
	return p.units[u]
}

// Resolve returns whether GST applies to the unit and at what rate. The rate
// is zero whenever either the global or the unit gate is off.
func (p GSTPolicy) Resolve(u BusinessUnit) (bool, float64) {
	unit, ok := p.units[u]
	if !ok || !p.Enabled || !unit.Enabled {
		return false, 0
	}
	return true, clampPercent(unit.Percent, -1)
}

// HotelRoomGSTPercent returns the GST slab for a nightly room tariff.
func HotelRoomGSTPercent(nightlyRate Money) float64 {
	switch {
	case nightlyRate < 1000*paisePerRupee:
		return 0
	case nightlyRate <= 7500*paisePerRupee:
		return 12
	default:
		return 18
	}
}
