package events

import (
	"time"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
)

// Message types carried in the AMQP Type header.
const (
	IdolUpserted = "idol.upserted"
	IdolDeleted  = "idol.deleted"
)

// IdolEvent is the JSON payload put on the RabbitMQ queue after a catalog
// mutation. Idol is empty for deletions.
type IdolEvent struct {
	Type       string    `json:"type"`
	IdolID     int64     `json:"idol_id"`
	Idol       *IdolDoc  `json:"idol,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IdolDoc is the search document derived from an aggregate.
type IdolDoc struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	CntMember   int       `json:"cnt_member"`
	ImageURL    string    `json:"image_url,omitempty"`
	MemberNames []string  `json:"member_names"`
}

func NewIdolDoc(i *entity.Idol) *IdolDoc {
	names := make([]string, 0, len(i.Members))
	for _, m := range i.Members {
		names = append(names, m.Name)
	}
	return &IdolDoc{
		ID:          i.ID,
		Name:        i.Name,
		CreatedAt:   i.CreatedAt,
		CntMember:   i.CntMember,
		ImageURL:    i.ImageURL,
		MemberNames: names,
	}
}

func Upserted(i *entity.Idol) IdolEvent {
	return IdolEvent{Type: IdolUpserted, IdolID: i.ID, Idol: NewIdolDoc(i), OccurredAt: time.Now().UTC()}
}

func Deleted(id int64) IdolEvent {
	return IdolEvent{Type: IdolDeleted, IdolID: id, OccurredAt: time.Now().UTC()}
}
