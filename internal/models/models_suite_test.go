package models

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/integrators"
	"github.com/san-kum/sirddft/internal/sir"
)

func TestModels(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Models Suite")
}

// probeSolver inspects the model while it holds the state buffer.
type probeSolver struct {
	model    Model
	setErr   error
	cloned   []float64
	received []float64
}

func (s *probeSolver) Integrate(p dynamo.Problem) (dynamo.Stats, error) {
	t, y := p.InitialState()
	s.received = y
	s.setErr = s.model.SetState(y)
	s.cloned = s.model.CloneState()
	p.FinalState(t+1, y)
	return dynamo.Stats{Steps: 1, Time: t + 1}, nil
}

var _ = Describe("Model lifecycle", func() {
	var m *SIRDiffusion1D

	BeforeEach(func() {
		var err error
		m, err = NewSIRDiffusion1D(
			sir.NewSIRParameters(1, 0.1),
			sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			ripple1D(mustLine(0, 1, 16), 1, 0.1),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts at time zero with an empty horizon", func() {
		Expect(m.Time()).To(BeZero())
		Expect(m.Horizon()).To(BeZero())
		Expect(m.Dim()).To(Equal(48))
	})

	It("accumulates durations across frames", func() {
		solver := integrators.NewRKF45()
		for i := 0; i < 4; i++ {
			Expect(m.AddTime(0.25)).To(Succeed())
			stats, err := m.Integrate(solver)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Steps).To(BeNumerically(">", 0))
		}
		Expect(m.Time()).To(BeNumerically("~", 1, 1e-12))
		Expect(m.Horizon()).To(Equal(1.0))
	})

	It("does nothing when the horizon is already reached", func() {
		before := m.CloneState()
		stats, err := m.Integrate(integrators.NewRKF45())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Steps).To(BeZero())
		Expect(m.CloneState()).To(Equal(before))
	})

	It("rejects negative and NaN durations", func() {
		Expect(m.AddTime(-0.1)).To(MatchError(dynamo.ErrNegativeDuration))
		Expect(m.AddTime(nan())).To(MatchError(dynamo.ErrNegativeDuration))
		Expect(m.Horizon()).To(BeZero())
	})

	It("hands its buffer to the solver and takes it back", func() {
		probe := &probeSolver{model: m}
		_, err := m.Integrate(probe)
		Expect(err).NotTo(HaveOccurred())

		Expect(probe.setErr).To(MatchError(dynamo.ErrIntegrating))
		Expect(probe.cloned).To(BeNil())
		Expect(probe.received).To(HaveLen(48))
		Expect(m.Time()).To(Equal(1.0))

		_, v := m.Result()
		Expect(&v.S[0]).To(BeIdenticalTo(&probe.received[0]))
	})

	It("copies raw state in both directions", func() {
		raw := m.CloneState()
		raw[0] = 7
		Expect(m.SetState(raw)).To(Succeed())

		_, v := m.Result()
		Expect(v.S[0]).To(Equal(7.0))

		raw[0] = 8
		Expect(v.S[0]).To(Equal(7.0))
		Expect(m.SetState(raw[:3])).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("reports per-field totals through its snapshot", func() {
		totals := sir.Totals(m.Snapshot())
		Expect(totals).To(HaveKey("S"))
		Expect(totals).To(HaveKey("I"))
		Expect(totals).To(HaveKey("R"))
		Expect(totals["R"]).To(BeZero())
		Expect(sir.Population(m.Snapshot())).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Model interface", func() {
	square := mustSquare(0, 10, 8)
	line := mustLine(0, 1, 8)
	diff := sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01}

	DescribeTable("every model integrates a short frame",
		func(build func() (Model, error), fields []string) {
			m, err := build()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.AddTime(0.05)).To(Succeed())
			_, err = m.Integrate(integrators.NewRKF45())
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Time()).To(BeNumerically("~", 0.05, 1e-12))

			snap := m.Snapshot()
			names := make([]string, 0, len(fields))
			for _, f := range snap.Fields() {
				names = append(names, f.Name)
			}
			Expect(names).To(Equal(fields))
		},
		Entry("sir", func() (Model, error) {
			return NewSIR(sir.NewSIRParameters(1, 0.1), sir.State{S: 0.99, I: 0.01})
		}, []string{"S", "I", "R"}),
		Entry("sir-diffusion-1d", func() (Model, error) {
			return NewSIRDiffusion1D(sir.NewSIRParameters(1, 0.1), diff, ripple1D(line, 1, 0.1))
		}, []string{"S", "I", "R"}),
		Entry("sir-diffusion-2d", func() (Model, error) {
			return NewSIRDiffusion2D(sir.NewSIRParameters(1, 0.1), diff, ripple2D(square, 1, 0.1))
		}, []string{"S", "I", "R"}),
		Entry("sir-ddft-1d", func() (Model, error) {
			return NewSIRDDFT1D(sir.NewSIRParameters(1, 0.1), diff, testDDFT1D, ripple1D(line, 1, 0.1))
		}, []string{"S", "I", "R"}),
		Entry("sir-ddft-2d", func() (Model, error) {
			return NewSIRDDFT2D(sir.NewSIRParameters(1, 0.1), diff, testDDFT2D, ripple2D(square, 0.4, 0.1))
		}, []string{"S", "I", "R"}),
		Entry("sz-ddft-2d", func() (Model, error) {
			return NewSZDDFT2D(sir.SZParameters{BiteParameter: 5.5, KillParameter: 4.5},
				sir.SZDiffusionParameters{DiffusivityS: 0.01, DiffusivityZ: 0.005},
				sir.SZDDFTParameters{MobilityS: 1, MobilityZ: 1, FearAmplitude: -30, FearRange: 1, HungerAmplitude: -10, HungerRange: 1},
				rippleSZ(square, 0.3, 0.05))
		}, []string{"S", "Z"}),
	)
})
