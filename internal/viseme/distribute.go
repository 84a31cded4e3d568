package viseme

import "fmt"

// Interval is a half-open span of time in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Length returns End - Start.
func (i Interval) Length() float64 {
	return i.End - i.Start
}

// Distributor splits a word's time span across its phonemes. Implementations
// must return exactly one interval per phoneme, laid out contiguously from
// start and ending at start+duration. A zero duration or an empty phoneme
// list yields no intervals.
type Distributor interface {
	Distribute(start, duration float64, phonemes []string) []Interval
}

// TimingModel names a Distributor implementation in configuration.
type TimingModel string

const (
	// TimingEven gives every phoneme the same share of the word.
	TimingEven TimingModel = "even"

	// TimingWeighted gives vowels a larger share than consonants.
	TimingWeighted TimingModel = "weighted"
)

// NewDistributor returns the distributor for a timing model.
func NewDistributor(model TimingModel) (Distributor, error) {
	switch model {
	case TimingEven, "":
		return EvenDistributor{}, nil
	case TimingWeighted:
		return DefaultWeightedDistributor(), nil
	default:
		return nil, fmt.Errorf("unknown timing model %q (use %q or %q)", model, TimingEven, TimingWeighted)
	}
}

// EvenDistributor divides a word into equal slices, one per phoneme. Real
// speech is not uniform; this trades phonetic fidelity for simplicity.
type EvenDistributor struct{}

// Distribute implements Distributor.
func (EvenDistributor) Distribute(start, duration float64, phonemes []string) []Interval {
	n := len(phonemes)
	if n == 0 || duration <= 0 {
		return nil
	}

	step := duration / float64(n)
	out := make([]Interval, n)
	for i := range out {
		out[i] = Interval{
			Start: start + float64(i)*step,
			End:   start + float64(i+1)*step,
		}
	}
	// Pin the last edge so accumulated error never leaks past the word.
	out[n-1].End = start + duration
	return out
}

// WeightedDistributor sizes each slice by phoneme class.
type WeightedDistributor struct {
	VowelWeight     float64
	ConsonantWeight float64
}

// DefaultWeightedDistributor returns a distributor where vowels last twice
// as long as consonants.
func DefaultWeightedDistributor() WeightedDistributor {
	return WeightedDistributor{VowelWeight: 2, ConsonantWeight: 1}
}

// Distribute implements Distributor.
func (w WeightedDistributor) Distribute(start, duration float64, phonemes []string) []Interval {
	n := len(phonemes)
	if n == 0 || duration <= 0 {
		return nil
	}

	weights := make([]float64, n)
	var total float64
	for i, p := range phonemes {
		weight := w.ConsonantWeight
		if IsVowel(p) {
			weight = w.VowelWeight
		}
		if weight <= 0 {
			weight = 1
		}
		weights[i] = weight
		total += weight
	}

	out := make([]Interval, n)
	var acc float64
	for i, weight := range weights {
		out[i].Start = start + duration*acc/total
		acc += weight
		out[i].End = start + duration*acc/total
	}
	out[n-1].End = start + duration
	return out
}
