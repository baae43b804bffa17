package controllers

// PID is a scalar feedback loop on an externally computed error.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

func (p *PID) Update(err, dt float64) float64 {
	if p.first || dt <= 0 {
		p.prevErr = err
		p.first = false
		return p.Kp * err
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
