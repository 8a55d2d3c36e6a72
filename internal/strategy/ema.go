package strategy

type emaState struct {
	alpha  float64
	value  float64
	seeded bool
}

func newEMA(period int) emaState {
	if period <= 1 {
		period = 1
	}
	return emaState{alpha: 2.0 / (float64(period) + 1)}
}

// Update: первое значение сидится первой ценой, дальше обычная рекурсия.
func (e *emaState) Update(price float64) {
	if !e.seeded {
		e.value = price
		e.seeded = true
		return
	}
	e.value = e.alpha*price + (1-e.alpha)*e.value
}

func (e *emaState) Value() float64 { return e.value }
