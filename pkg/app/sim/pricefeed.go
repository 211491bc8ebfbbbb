package sim

import (
	"math"
	"math/rand"
)

// RandomWalk produces one price per symbol per call to Next. Each step
// moves the price by a uniform random fraction in ±VolatilityBps and
// rounds to cents. Prices never fall below 1% of the start price.
type RandomWalk struct {
	rng           *rand.Rand
	start         float64
	volatilityBps int64
	prices        map[string]float64
}

func NewRandomWalk(rng *rand.Rand, symbols []string, start float64, volatilityBps int64) *RandomWalk {
	w := &RandomWalk{
		rng:           rng,
		start:         start,
		volatilityBps: volatilityBps,
		prices:        make(map[string]float64, len(symbols)),
	}
	for _, sym := range symbols {
		w.prices[sym] = start
	}
	return w
}

// Price returns the current price of symbol without advancing it.
func (w *RandomWalk) Price(symbol string) float64 {
	if px, ok := w.prices[symbol]; ok {
		return px
	}
	return w.start
}

// Next advances symbol one step and returns the new price.
func (w *RandomWalk) Next(symbol string) float64 {
	px := w.Price(symbol)

	step := (w.rng.Float64()*2 - 1) * float64(w.volatilityBps) / 10000
	px = roundCents(px * (1 + step))
	if floor := w.floor(); px < floor {
		px = floor
	}

	w.prices[symbol] = px
	return px
}

func (w *RandomWalk) floor() float64 {
	return math.Max(roundCents(w.start/100), 0.01)
}

func roundCents(px float64) float64 {
	return math.Round(px*100) / 100
}
