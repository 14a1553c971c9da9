package ir

// Default parameter values applied by Config.Resolve when an optional
// field is left unset.
const (
	DefaultSigma              = 1.5
	DefaultAlpha              = 2.0
	DefaultETCRatio           = 0.6
	DefaultLaneChangeCooldown = 5
	DefaultAMin               = 0.1
	DefaultAMax               = 0.9
	DefaultD0                 = 5.0
	DefaultBeta               = 1.5
)

// Config is the user-facing plaza configuration.
//
// Pointer fields are optional; nil means "use the documented default".
// JSON tags match the YAML tags so a Config can be re-encoded as JSON and
// checked against the CUE schema in internal/config.
type Config struct {
	Lanes  int `yaml:"lanes" json:"lanes"`   // L, highway lanes
	Booths int `yaml:"booths" json:"booths"` // B, booth lanes (B >= L)

	Lambda float64 `yaml:"lambda" json:"lambda"` // arrival probability per tick
	Accel  float64 `yaml:"accel" json:"accel"`   // base advance probability a

	Mu          float64     `yaml:"mu" json:"mu"`
	ServiceMode ServiceMode `yaml:"service_mode,omitempty" json:"service_mode,omitempty"`

	Adaptive bool     `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`
	AMin     *float64 `yaml:"a_min,omitempty" json:"a_min,omitempty"`
	AMax     *float64 `yaml:"a_max,omitempty" json:"a_max,omitempty"`
	D0       *float64 `yaml:"d0,omitempty" json:"d0,omitempty"`
	Beta     *float64 `yaml:"beta,omitempty" json:"beta,omitempty"`

	LaneChangeCooldown *int     `yaml:"lane_change_cooldown,omitempty" json:"lane_change_cooldown,omitempty"`
	Sigma              *float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`
	Alpha              *float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`

	PMin     float64  `yaml:"p_min" json:"p_min"`
	ETCRatio *float64 `yaml:"etc_ratio,omitempty" json:"etc_ratio,omitempty"`
}

// Params is a fully resolved configuration. Every field is concrete.
type Params struct {
	Lanes  int
	Booths int

	Lambda float64
	Accel  float64

	Mu          float64
	ServiceMode ServiceMode

	Adaptive bool
	AMin     float64
	AMax     float64
	D0       float64
	Beta     float64

	LaneChangeCooldown int
	Sigma              float64
	Alpha              float64
	PMin               float64
	ETCRatio           float64
}

// Resolve fills unset optional fields with their defaults.
// An empty ServiceMode resolves to ServiceFixed.
func (c Config) Resolve() Params {
	p := Params{
		Lanes:              c.Lanes,
		Booths:             c.Booths,
		Lambda:             c.Lambda,
		Accel:              c.Accel,
		Mu:                 c.Mu,
		ServiceMode:        c.ServiceMode,
		Adaptive:           c.Adaptive,
		AMin:               floatOr(c.AMin, DefaultAMin),
		AMax:               floatOr(c.AMax, DefaultAMax),
		D0:                 floatOr(c.D0, DefaultD0),
		Beta:               floatOr(c.Beta, DefaultBeta),
		LaneChangeCooldown: DefaultLaneChangeCooldown,
		Sigma:              floatOr(c.Sigma, DefaultSigma),
		Alpha:              floatOr(c.Alpha, DefaultAlpha),
		PMin:               c.PMin,
		ETCRatio:           floatOr(c.ETCRatio, DefaultETCRatio),
	}
	if c.LaneChangeCooldown != nil {
		p.LaneChangeCooldown = *c.LaneChangeCooldown
	}
	if p.ServiceMode == "" {
		p.ServiceMode = ServiceFixed
	}
	return p
}

// IsDegenerate reports whether the plaza has no fan-out/fan-in (L == B).
func (p Params) IsDegenerate() bool {
	return p.Lanes == p.Booths
}

// Float returns a pointer to v. Convenience for optional Config fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Layout fixes the longitudinal zones of the plaza.
//
//	[0, DivStart)            free highway
//	DivStart                 fan-out junction column
//	(DivStart, LockStart)    lateral changes allowed, no routing
//	[LockStart, MergeStart)  lane-commitment zone, BoothX inside it
//	[MergeStart, Cols)       merge zone
type Layout struct {
	Cols       int `yaml:"cols" json:"cols"`
	DivStart   int `yaml:"div_start" json:"div_start"`
	LockStart  int `yaml:"lock_start" json:"lock_start"`
	BoothX     int `yaml:"booth_x" json:"booth_x"`
	MergeStart int `yaml:"merge_start" json:"merge_start"`
}

// DefaultLayout is the standard 90-column plaza.
func DefaultLayout() Layout {
	return Layout{
		Cols:       90,
		DivStart:   30,
		LockStart:  45,
		BoothX:     55,
		MergeStart: 60,
	}
}

// Valid reports whether the zones are ordered
// 0 < DivStart < LockStart <= BoothX < MergeStart < Cols.
func (l Layout) Valid() bool {
	return l.DivStart > 0 &&
		l.DivStart < l.LockStart &&
		l.LockStart <= l.BoothX &&
		l.BoothX < l.MergeStart &&
		l.MergeStart < l.Cols
}

// InCommitmentZone reports whether no lateral change of any kind is allowed
// at pos.
func (l Layout) InCommitmentZone(pos int) bool {
	return pos >= l.LockStart && pos < l.MergeStart
}

// AtMergeWall reports whether pos is at or past the merge wall.
func (l Layout) AtMergeWall(pos int) bool {
	return pos >= l.MergeStart
}

// AllowsEscape reports whether a lateral escape may start at pos: outside
// the commitment zone and upstream of the merge wall, where fan-in takes
// over. The junction column itself only hosts the one-shot fan-out.
func (l Layout) AllowsEscape(pos int) bool {
	return !l.InCommitmentZone(pos) && !l.AtMergeWall(pos) && pos != l.DivStart
}
