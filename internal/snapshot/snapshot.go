// Package snapshot defines the versioned widget display state and the
// builder that derives it from goal data.
//
// The serialized form is a cross-process contract: a native renderer,
// built independently, reads the persisted record and judges staleness
// from generatedAt. Field names and the version tag must not drift.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/glance/internal/domain/mascot"
	"github.com/okian/glance/internal/domain/model"
)

// CurrentVersion is the schema version written by this producer.
//
// Version history:
//
//	1: no theme hints and no progressLabel. Decoded with backgroundStatus
//	   "default", a time band derived from generatedAt, variant 0, and a
//	   nil progressLabel.
//	2: adds backgroundStatus/backgroundTimeBand/backgroundVariant and
//	   topGoal.progressLabel.
const CurrentVersion = 2

// Key is the fixed record key the snapshot is persisted under.
const Key = "widget_snapshot"

// TopGoal is the goal featured on the widget.
type TopGoal struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Progress      float64            `json:"progress"`
	GoalType      model.GoalType     `json:"goalType"`
	ProgressType  model.ProgressType `json:"progressType"`
	NextDueEpoch  *int64             `json:"nextDueEpoch"`
	Urgency       float64            `json:"urgency"`
	ProgressLabel *string            `json:"progressLabel"`
}

// Mascot is the serialized mascot state. ExpiresAt is epoch milliseconds
// and only set while celebrating.
type Mascot struct {
	Emotion    string `json:"emotion"`
	FrameIndex int    `json:"frameIndex"`
	ExpiresAt  *int64 `json:"expiresAt"`
}

// State converts the serialized mascot back into the state-machine value.
func (m Mascot) State() mascot.State {
	s := mascot.State{
		Emotion:    mascot.Emotion(m.Emotion),
		FrameIndex: m.FrameIndex,
	}
	if m.ExpiresAt != nil {
		t := time.UnixMilli(*m.ExpiresAt)
		s.ExpiresAt = &t
	}
	return s
}

// MascotFrom serializes a state-machine value.
func MascotFrom(s mascot.State) Mascot {
	m := Mascot{
		Emotion:    string(s.Emotion),
		FrameIndex: s.FrameIndex,
	}
	if s.ExpiresAt != nil {
		ms := s.ExpiresAt.UnixMilli()
		m.ExpiresAt = &ms
	}
	return m
}

// Snapshot is the versioned display state bundle. TopGoal is nil exactly
// when the goal set was empty at generation time.
type Snapshot struct {
	Version            int      `json:"version"`
	GeneratedAt        int64    `json:"generatedAt"` // unix seconds
	TopGoal            *TopGoal `json:"topGoal"`
	Mascot             Mascot   `json:"mascot"`
	CTA                string   `json:"cta"`
	BackgroundStatus   string   `json:"backgroundStatus"`
	BackgroundTimeBand string   `json:"backgroundTimeBand"`
	BackgroundVariant  int      `json:"backgroundVariant"`
}

// Encode serializes a snapshot for the shared store.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot, applying defaults for fields absent
// under older schema versions. Unknown or missing versions are rejected so
// callers can treat the record as absent.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	switch s.Version {
	case CurrentVersion:
		return &s, nil
	case 1:
		applyV1Defaults(&s)
		return &s, nil
	default:
		return nil, fmt.Errorf("decode snapshot: %w: %d", ErrUnknownVersion, s.Version)
	}
}

func applyV1Defaults(s *Snapshot) {
	if s.BackgroundStatus == "" {
		s.BackgroundStatus = "default"
	}
	if s.BackgroundTimeBand == "" {
		s.BackgroundTimeBand = string(timeBandFor(time.Unix(s.GeneratedAt, 0).Hour()))
	}
	s.BackgroundVariant = 0
}
