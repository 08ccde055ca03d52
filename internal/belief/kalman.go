package belief

import (
	"fmt"
	"math"
)

// KalmanState is an immutable snapshot of a constant-velocity Kalman belief.
type KalmanState struct {
	State            [2]float64    `json:"state" yaml:"state"` // [position, velocity]
	Covariance       [2][2]float64 `json:"covariance" yaml:"covariance"`
	ProcessNoise     float64       `json:"process_noise" yaml:"process_noise"`
	MeasurementNoise float64       `json:"measurement_noise" yaml:"measurement_noise"`
}

// KalmanObservation is a scalar position measurement.
type KalmanObservation struct {
	Measurement float64 `json:"measurement"`
}

// Kalman tracks position and velocity; updates correct the position only.
type Kalman struct {
	state  KalmanState
	src    Source
	jitter float64
}

// NewKalman creates a Kalman belief. The position variance and the
// measurement noise must be positive.
func NewKalman(prior KalmanState, src Source) (*Kalman, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if !(prior.Covariance[0][0] > 0) {
		return nil, fmt.Errorf("kalman position variance %v: %w", prior.Covariance[0][0], ErrNonPositiveUncertainty)
	}
	if !(prior.MeasurementNoise > 0) {
		return nil, fmt.Errorf("kalman measurement noise %v: %w", prior.MeasurementNoise, ErrNonPositiveUncertainty)
	}
	return &Kalman{state: prior, src: src, jitter: DefaultJitter}, nil
}

// State returns a snapshot of the current state.
func (k *Kalman) State() KalmanState { return k.state }

// Observe draws position + jitter*U[0,1).
func (k *Kalman) Observe() (KalmanObservation, error) {
	return KalmanObservation{Measurement: k.state.State[0] + k.jitter*k.src.Float64()}, nil
}

// Prior returns the current posterior snapshot.
func (k *Kalman) Prior() Posterior {
	return Posterior{Mean: k.state.State[0], Entropy: k.Entropy(), Uncertainty: k.state.Covariance[0][0]}
}

// Update corrects the position with gain P00/(P00+R).
func (k *Kalman) Update(obs KalmanObservation) error {
	if math.IsNaN(obs.Measurement) || math.IsInf(obs.Measurement, 0) {
		return fmt.Errorf("kalman measurement %v: not finite", obs.Measurement)
	}
	g := gain(k.state.Covariance[0][0], k.state.MeasurementNoise)
	k.state.State[0] += g * (obs.Measurement - k.state.State[0])
	k.state.Covariance[0][0] = floor(k.state.Covariance[0][0] * (1 - g))
	return nil
}

// Predict advances the state by dt under a constant-velocity model:
// x = F x, P = F P F^T + Q with Q = q*I.
func (k *Kalman) Predict(dt float64) {
	s := &k.state
	s.State[0] += s.State[1] * dt

	p := s.Covariance
	p00 := p[0][0] + dt*(p[1][0]+p[0][1]) + dt*dt*p[1][1]
	p01 := p[0][1] + dt*p[1][1]
	p10 := p[1][0] + dt*p[1][1]
	p11 := p[1][1]

	s.Covariance = [2][2]float64{
		{floor(p00 + s.ProcessNoise), p01},
		{p10, p11 + s.ProcessNoise},
	}
}

// Entropy returns ln(P00).
func (k *Kalman) Entropy() float64 {
	return math.Log(k.state.Covariance[0][0])
}

// Mean returns the estimated position.
func (k *Kalman) Mean() float64 { return k.state.State[0] }

// Clone returns a copy sharing the random source.
func (k *Kalman) Clone() Belief[KalmanObservation] {
	c := *k
	return &c
}
