package entity

import (
	"fmt"
	"time"
)

// Member belongs to at most one Idol. The back-reference is only written by
// Idol.AddMember and is never serialized. Password holds a bcrypt hash.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Age       int       `json:"age"`
	UserName  string    `json:"userName"`
	Password  string    `json:"-"`

	idolID   int64
	attached bool
}

// IdolID reports the owning idol, if any.
func (m *Member) IdolID() (int64, bool) {
	return m.idolID, m.attached
}

func (m *Member) String() string {
	idol := "none"
	if m.attached {
		idol = fmt.Sprintf("%d", m.idolID)
	}
	return fmt.Sprintf("Member{id=%d name=%q userName=%q age=%d idol=%s}", m.ID, m.Name, m.UserName, m.Age, idol)
}
