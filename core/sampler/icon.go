package sampler

// IconFrames is the number of frames in the toolbar animation.
const IconFrames = 55

// Icon is presentation state only. It never affects decisions.
type Icon struct {
	Frame     int
	Animating bool
}

// Icon returns the current toolbar icon state.
func (s *Sampler) Icon() Icon {
	return Icon{
		Frame:     int(s.frame),
		Animating: s.craft != nil && s.craft.RunAutoScience,
	}
}

// advanceIcon moves the animation forward at SpriteFPS while automation is on.
func (s *Sampler) advanceIcon() {
	if s.craft == nil || !s.craft.RunAutoScience || s.settings.SpriteFPS <= 0 {
		return
	}
	period := 1 / s.settings.SpriteFPS
	now := s.flight.RealTime()
	if s.lastFrame+period >= now {
		return
	}
	step := s.flight.DeltaTime() / period
	if s.frame+step < IconFrames {
		s.frame += step
	} else {
		s.frame = 0
	}
	s.lastFrame = now
}
