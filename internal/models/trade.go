package models

import "time"

type TradeMode string

const (
	ModeSimulated TradeMode = "simulated"
	ModeReal      TradeMode = "real"
)

// TradeRecord: одна исполненная (или симулированная) сделка.
type TradeRecord struct {
	Time    time.Time
	Side    Side
	Price   float64
	Amount  float64 // в котируемой валюте
	Mode    TradeMode
	OrderID string
}
