// README: Team roster model; kinds, per-team state and the create request.
package team

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindMrX       Kind = "MrX"
	KindDetective Kind = "Detective"
	KindObserver  Kind = "Observer"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMrX, KindDetective, KindObserver:
		return true
	}
	return false
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*k = ""
		return nil
	}
	if !Kind(s).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	*k = Kind(s)
	return nil
}

type Team struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Kind  Kind   `json:"kind"`
}

// State is a team plus its live position. OnTrain holds the id of the train
// the team rides, nil when on foot.
type State struct {
	Team    Team    `json:"team"`
	Long    float64 `json:"long"`
	Lat     float64 `json:"lat"`
	OnTrain *string `json:"on_train"`
}

type CreateTeam struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Kind  Kind   `json:"kind"`
}
