// Package memory keeps the catalog in process memory. It backs
// STORAGE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/internal/domain/repository"
)

type idolRow struct {
	id        int64
	name      string
	createdAt time.Time
	cntMember int
	imageURL  string
}

type memberRow struct {
	id        int64
	name      string
	createdAt time.Time
	age       int
	userName  string
	password  string
	idolID    int64
	owned     bool
}

// Store is the shared table space of the memory repositories. A single
// mutex stands in for the row locks the postgres driver relies on.
type Store struct {
	mu sync.Mutex

	nextIdol, nextMember, nextUser int64

	idols   map[int64]*idolRow
	members map[int64]*memberRow
	users   map[string]*entity.User
}

func NewStore() *Store {
	return &Store{
		idols:   map[int64]*idolRow{},
		members: map[int64]*memberRow{},
		users:   map[string]*entity.User{},
	}
}

func (s *Store) Idols() *IdolRepository     { return &IdolRepository{s: s} }
func (s *Store) Members() *MemberRepository { return &MemberRepository{s: s} }
func (s *Store) Users() *UserRepository     { return &UserRepository{s: s} }

// load rebuilds an aggregate; members are attached through AddMember and the
// stored count is restored afterwards.
func (s *Store) load(row *idolRow) *entity.Idol {
	idol := &entity.Idol{
		ID:        row.id,
		Name:      row.name,
		CreatedAt: row.createdAt,
		ImageURL:  row.imageURL,
		Members:   []*entity.Member{},
	}
	ids := make([]int64, 0)
	for id, m := range s.members {
		if m.owned && m.idolID == row.id {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for _, id := range ids {
		_ = idol.AddMember(s.members[id].toEntity())
	}
	idol.CntMember = row.cntMember
	return idol
}

func (m *memberRow) toEntity() *entity.Member {
	return &entity.Member{
		ID:        m.id,
		Name:      m.name,
		CreatedAt: m.createdAt,
		Age:       m.age,
		UserName:  m.userName,
		Password:  m.password,
	}
}

func (s *Store) insertMember(m *entity.Member) {
	s.nextMember++
	m.ID = s.nextMember
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	row := &memberRow{
		id:        m.ID,
		name:      m.Name,
		createdAt: m.CreatedAt,
		age:       m.Age,
		userName:  m.UserName,
		password:  m.Password,
	}
	row.idolID, row.owned = m.IdolID()
	s.members[m.ID] = row
}

func (s *Store) persist(idol *entity.Idol) {
	s.idols[idol.ID] = &idolRow{
		id:        idol.ID,
		name:      idol.Name,
		createdAt: idol.CreatedAt,
		cntMember: idol.CntMember,
		imageURL:  idol.ImageURL,
	}
	for _, m := range idol.Pending() {
		s.insertMember(m)
	}
}

type IdolRepository struct{ s *Store }

func (r *IdolRepository) FindByID(_ context.Context, id int64) (*entity.Idol, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.idols[id]
	if !ok {
		return nil, nil
	}
	return r.s.load(row), nil
}

func (r *IdolRepository) FindByName(_ context.Context, name string) (*entity.Idol, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *idolRow
	for _, row := range r.s.idols {
		if row.name == name && (found == nil || row.id < found.id) {
			found = row
		}
	}
	if found == nil {
		return nil, nil
	}
	return r.s.load(found), nil
}

func (r *IdolRepository) FindAllRecent(_ context.Context, page, size int) ([]*entity.Idol, error) {
	if size <= 0 {
		size = repository.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	if page > math.MaxInt/size {
		return []*entity.Idol{}, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*idolRow, 0, len(r.s.idols))
	for _, row := range r.s.idols {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(a, b int) bool {
		if !rows[a].createdAt.Equal(rows[b].createdAt) {
			return rows[a].createdAt.After(rows[b].createdAt)
		}
		return rows[a].id > rows[b].id
	})
	start := page * size
	if start >= len(rows) {
		return []*entity.Idol{}, nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]*entity.Idol, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, r.s.load(row))
	}
	return out, nil
}

func (r *IdolRepository) Save(_ context.Context, idol *entity.Idol) (*entity.Idol, error) {
	if idol == nil {
		return nil, fmt.Errorf("save idol: %w", domain.ErrInvalidArgument)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if idol.ID == 0 {
		if idol.CreatedAt.IsZero() {
			idol.CreatedAt = time.Now().UTC()
		}
		r.s.nextIdol++
		idol.AssignID(r.s.nextIdol)
	} else if _, ok := r.s.idols[idol.ID]; !ok {
		return nil, fmt.Errorf("idol %d: %w", idol.ID, domain.ErrNotFound)
	}
	r.s.persist(idol)
	return idol, nil
}

func (r *IdolRepository) Update(_ context.Context, id int64, fn func(*entity.Idol) error) (*entity.Idol, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.idols[id]
	if !ok {
		return nil, fmt.Errorf("idol %d: %w", id, domain.ErrNotFound)
	}
	idol := r.s.load(row)
	if err := fn(idol); err != nil {
		return nil, err
	}
	r.s.persist(idol)
	return idol, nil
}

func (r *IdolRepository) DeleteByID(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.idols, id)
	for mid, m := range r.s.members {
		if m.owned && m.idolID == id {
			delete(r.s.members, mid)
		}
	}
	return nil
}

type MemberRepository struct{ s *Store }

func (r *MemberRepository) Create(_ context.Context, m *entity.Member) (*entity.Member, error) {
	if m == nil {
		return nil, fmt.Errorf("create member: %w", domain.ErrInvalidArgument)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.insertMember(m)
	return m, nil
}

func (r *MemberRepository) FindByID(_ context.Context, id int64) (*entity.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	return m.toEntity(), nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp, nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) (*entity.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.users[u.Username]; ok {
		cp := *existing
		return &cp, false, nil
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{entity.RoleUser}
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	cp := *u
	r.s.users[u.Username] = &cp
	return u, true, nil
}

var (
	_ repository.IdolRepository   = (*IdolRepository)(nil)
	_ repository.MemberRepository = (*MemberRepository)(nil)
	_ repository.UserRepository   = (*UserRepository)(nil)
)
