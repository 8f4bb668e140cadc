package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Durations cross the wire as fractional seconds, matching what clients submit.

func (s Submission) MarshalJSON() ([]byte, error) {
	type alias Submission
	return json.Marshal(struct {
		alias
		TimeTaken float64 `json:"timeTaken"`
	}{alias: alias(s), TimeTaken: s.TimeTaken.Seconds()})
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	type alias Submission
	aux := struct {
		*alias
		TimeTaken float64 `json:"timeTaken"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.TimeTaken = SecondsToDuration(aux.TimeTaken)
	return nil
}

func (p ParticipantScore) MarshalJSON() ([]byte, error) {
	type alias ParticipantScore
	return json.Marshal(struct {
		alias
		TimeTaken float64 `json:"timeTaken"`
	}{alias: alias(p), TimeTaken: p.TimeTaken.Seconds()})
}

func (p *ParticipantScore) UnmarshalJSON(data []byte) error {
	type alias ParticipantScore
	aux := struct {
		*alias
		TimeTaken float64 `json:"timeTaken"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.TimeTaken = SecondsToDuration(aux.TimeTaken)
	return nil
}

// SecondsToDuration rounds fractional seconds to the nearest nanosecond.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
