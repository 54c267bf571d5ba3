package tui

// Surface holds the last values pushed by the controller. It implements
// controller.Display and is read by Model.View.
type Surface struct {
	PlayLabel     string
	RecordLabel   string
	TimeLabel     string
	Remaining     string
	SliderMin     float64
	SliderMax     float64
	SliderValue   float64
	PlayEnabled   bool
	RecordEnabled bool
	Status        string
}

func NewSurface() *Surface {
	return &Surface{
		PlayLabel:     "Play",
		RecordLabel:   "Record",
		TimeLabel:     "00:00",
		Remaining:     "-00:00",
		RecordEnabled: true,
	}
}

func (s *Surface) SetPlayButtonLabel(label string)   { s.PlayLabel = label }
func (s *Surface) SetRecordButtonLabel(label string) { s.RecordLabel = label }
func (s *Surface) SetTimeLabel(text string)          { s.TimeLabel = text }
func (s *Surface) SetRemainingLabel(text string)     { s.Remaining = text }
func (s *Surface) SetSliderValue(value float64)      { s.SliderValue = value }
func (s *Surface) SetPlayEnabled(enabled bool)       { s.PlayEnabled = enabled }
func (s *Surface) SetRecordEnabled(enabled bool)     { s.RecordEnabled = enabled }
func (s *Surface) SetStatus(text string)             { s.Status = text }

func (s *Surface) SetSliderRange(min, max float64) {
	s.SliderMin = min
	s.SliderMax = max
}

// Fraction is the slider position in [0, 1].
func (s *Surface) Fraction() float64 {
	span := s.SliderMax - s.SliderMin
	if span <= 0 {
		return 0
	}
	f := (s.SliderValue - s.SliderMin) / span
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
