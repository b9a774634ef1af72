// Package event carries simulation notifications to whoever renders them.
package event

import "github.com/pixil98/go-timeloop/internal/storage"

// Kind names a notification type. It is also the suffix of the subject the
// messaging forwarder publishes on.
type Kind string

const (
	KindHourChanged     Kind = "hour-changed"
	KindPeriodChanged   Kind = "period-changed"
	KindDayReset        Kind = "day-reset"
	KindLocationChanged Kind = "location-changed"
	KindCharacterMoved  Kind = "character-moved"
	KindDiscovery       Kind = "discovery"
	KindGrowthMilestone Kind = "growth-milestone"
	KindSpecialEvent    Kind = "special-event"
	KindSecretRevealed  Kind = "secret-revealed"
	KindQuestUpdated    Kind = "quest-updated"
	KindNotice          Kind = "notice"
)

// Event is implemented by every notification payload.
type Event interface {
	Kind() Kind
}

type HourChanged struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

func (HourChanged) Kind() Kind { return KindHourChanged }

type PeriodChanged struct {
	Day  int    `json:"day"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (PeriodChanged) Kind() Kind { return KindPeriodChanged }

type DayReset struct {
	Day int `json:"day"`
}

func (DayReset) Kind() Kind { return KindDayReset }

type LocationChanged struct {
	From storage.Identifier `json:"from,omitempty"`
	To   storage.Identifier `json:"to"`
	Name string             `json:"name"`
}

func (LocationChanged) Kind() Kind { return KindLocationChanged }

type CharacterMoved struct {
	Character storage.Identifier `json:"character"`
	Name      string             `json:"name"`
	From      storage.Identifier `json:"from"`
	To        storage.Identifier `json:"to"`
	Activity  string             `json:"activity"`
}

func (CharacterMoved) Kind() Kind { return KindCharacterMoved }

// Discovery is published the first time something is found. Key is the
// knowledge key that records it.
type Discovery struct {
	Location storage.Identifier `json:"location"`
	Name     string             `json:"name"`
	Key      string             `json:"key"`
}

func (Discovery) Kind() Kind { return KindDiscovery }

type GrowthMilestone struct {
	Milestone storage.Identifier `json:"milestone"`
	OldTrait  string             `json:"old_trait,omitempty"`
	NewTrait  string             `json:"new_trait,omitempty"`
	Message   string             `json:"message"`
}

func (GrowthMilestone) Kind() Kind { return KindGrowthMilestone }

type SpecialEvent struct {
	Type        string             `json:"type"`
	Character   storage.Identifier `json:"character"`
	Location    storage.Identifier `json:"location"`
	Description string             `json:"description"`
}

func (SpecialEvent) Kind() Kind { return KindSpecialEvent }

type SecretRevealed struct {
	Character storage.Identifier `json:"character"`
	Index     int                `json:"index"`
	Secret    string             `json:"secret"`
}

func (SecretRevealed) Kind() Kind { return KindSecretRevealed }

type QuestUpdated struct {
	Quest storage.Identifier `json:"quest"`
	Title string             `json:"title"`
	Old   string             `json:"old"`
	New   string             `json:"new"`
}

func (QuestUpdated) Kind() Kind { return KindQuestUpdated }

// Notice is a user facing message, usually explaining why an action failed.
type Notice struct {
	Message string `json:"message"`
}

func (Notice) Kind() Kind { return KindNotice }
