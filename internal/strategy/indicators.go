package strategy

import (
	"fmt"
	"math"

	"signal_bot/internal/models"
)

// EMA считает экспоненциальную среднюю по span, выровненную с входом.
// out[0] == closes[0], без предварительного окна.
func EMA(closes []float64, span int) []float64 {
	out := make([]float64, len(closes))
	e := newEMA(span)
	for i, c := range closes {
		e.Update(c)
		out[i] = e.Value()
	}
	return out
}

// RSI по простому скользящему среднему приростов и потерь за window шагов.
// Первая дельта считается нулевой, поэтому значения есть начиная с индекса window-1;
// раньше: NaN.
//
// Нулевая средняя потеря: при ненулевом приросте RSI = 100, на плоском окне RSI = 50.
func RSI(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(closes) < window {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	var sumGain, sumLoss float64
	for i := range closes {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i >= window {
			sumGain -= gains[i-window]
			sumLoss -= losses[i-window]
		}
		if i < window-1 {
			continue
		}
		out[i] = rsiValue(sumGain/float64(window), sumLoss/float64(window))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// скользящие суммы могут уйти в -1e-15 после вычитаний
	if avgLoss <= 1e-12 {
		if avgGain <= 1e-12 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Series: индикаторы, выровненные один к одному со свечами.
type Series struct {
	Close   []float64
	EMAFast []float64
	EMASlow []float64
	RSI     []float64
}

// Point: значения индикаторов на одной свече.
type Point struct {
	Close   float64
	EMAFast float64
	EMASlow float64
	RSI     float64
}

func (s Series) Len() int { return len(s.Close) }

func (s Series) At(i int) Point {
	return Point{Close: s.Close[i], EMAFast: s.EMAFast[i], EMASlow: s.EMASlow[i], RSI: s.RSI[i]}
}

// Last3: two-back, previous, current.
func (s Series) Last3() [3]Point {
	n := s.Len()
	return [3]Point{s.At(n - 3), s.At(n - 2), s.At(n - 1)}
}

// Compute пересчитывает индикаторы с нуля на каждом цикле.
func Compute(candles []models.Candle, fast, slow, rsiWindow, minCandles int) (Series, error) {
	if len(candles) < minCandles {
		return Series{}, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCandles, len(candles), minCandles)
	}
	closes := models.Closes(candles)
	return Series{
		Close:   closes,
		EMAFast: EMA(closes, fast),
		EMASlow: EMA(closes, slow),
		RSI:     RSI(closes, rsiWindow),
	}, nil
}
