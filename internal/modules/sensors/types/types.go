package types

import "time"

type Reading struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// Dataset is the parsed time series of one sensor file. Readings keep the
// file's row order.
type Dataset struct {
	Name     string    `json:"name"`
	Source   string    `json:"source"`
	Readings []Reading `json:"readings"`
}

type SensorSummary struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Readings int        `json:"readings"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// Summarize returns the API view of d at position id.
func Summarize(id int, d Dataset) SensorSummary {
	s := SensorSummary{ID: id, Name: d.Name, Readings: len(d.Readings)}
	if len(d.Readings) == 0 {
		return s
	}
	from, to := d.Readings[0].Time, d.Readings[0].Time
	for _, r := range d.Readings[1:] {
		if r.Time.Before(from) {
			from = r.Time
		}
		if r.Time.After(to) {
			to = r.Time
		}
	}
	s.From, s.To = &from, &to
	return s
}

// ArchivedSensor is one dataset as stored in the snapshot archive.
type ArchivedSensor struct {
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Source   string    `json:"source"`
	Readings int       `json:"readings"`
	LoadedAt time.Time `json:"loadedAt"`
}
