package entity

import (
	"fmt"
	"time"

	"github.com/oksasatya/idol-catalog/internal/domain"
)

// Idol is the aggregate root for the catalog. It owns its Members; deleting
// an Idol deletes them.
//
// CntMember is denormalized. AddMember keeps it equal to len(Members); the
// PATCH merge policy may overwrite it with an arbitrary value.
//
// Members must only grow through AddMember; entries appended directly are
// never attached and AssignID leaves them alone.
type Idol struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	CntMember int       `json:"cntMember"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Members   []*Member `json:"members"`
}

// NewIdol returns an empty aggregate stamped with the current time.
func NewIdol(name string) *Idol {
	return &Idol{Name: name, CreatedAt: time.Now().UTC(), Members: []*Member{}}
}

// AddMember attaches m to the idol, appends it in insertion order and
// recounts CntMember from the collection.
//
// Not safe for concurrent use on the same Idol.
func (i *Idol) AddMember(m *Member) error {
	if i == nil {
		return fmt.Errorf("add member: nil idol: %w", domain.ErrInvalidArgument)
	}
	if m == nil {
		return fmt.Errorf("add member: nil member: %w", domain.ErrInvalidArgument)
	}
	m.idolID = i.ID
	m.attached = true
	i.Members = append(i.Members, m)
	i.CntMember = len(i.Members)
	return nil
}

// adopt rewrites back-references after the root received its identifier.
func (i *Idol) adopt() {
	for _, m := range i.Members {
		if m.attached {
			m.idolID = i.ID
		}
	}
}

// AssignID sets the generated identifier and propagates it to every member
// already attached through AddMember.
func (i *Idol) AssignID(id int64) {
	i.ID = id
	i.adopt()
}

// Pending returns the members that have not been persisted yet.
func (i *Idol) Pending() []*Member {
	out := make([]*Member, 0)
	for _, m := range i.Members {
		if m.ID == 0 {
			out = append(out, m)
		}
	}
	return out
}

// IdolPatch is a partial update. A nil Name or a zero CntMember means
// "leave unchanged"; a patch cannot set the count to zero.
type IdolPatch struct {
	Name      *string `json:"name"`
	CntMember int     `json:"cntMember"`
}

// Apply merges the patch into i.
func (p IdolPatch) Apply(i *Idol) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.CntMember != 0 {
		i.CntMember = p.CntMember
	}
}

func (i *Idol) String() string {
	return fmt.Sprintf("Idol{id=%d name=%q createdAt=%s cntMember=%d members=%d}",
		i.ID, i.Name, i.CreatedAt.Format(time.RFC3339), i.CntMember, len(i.Members))
}
