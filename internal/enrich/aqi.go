package enrich

import "math"

// naqiBands are the Indian National AQI breakpoints for PM2.5 (24h, µg/m³).
var naqiBands = []struct {
	concLo, concHi   float64
	indexLo, indexHi float64
}{
	{0, 30, 0, 50},
	{30, 60, 50, 100},
	{60, 90, 100, 200},
	{90, 120, 200, 300},
	{120, 250, 300, 400},
	{250, 380, 400, 500},
}

// AQIFromPM25 converts a PM2.5 concentration to the NAQI scale, capped at 500.
func AQIFromPM25(pm25 float64) int {
	if pm25 <= 0 {
		return 0
	}
	for _, b := range naqiBands {
		if pm25 <= b.concHi {
			idx := b.indexLo + (pm25-b.concLo)*(b.indexHi-b.indexLo)/(b.concHi-b.concLo)
			return int(math.Round(idx))
		}
	}
	return 500
}
