package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/internal/domain/repository"
)

type MemberRepository struct {
	db DB
}

func NewMemberRepository(db DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create stores a member; it is detached unless it went through Idol.AddMember.
func (r *MemberRepository) Create(ctx context.Context, m *entity.Member) (*entity.Member, error) {
	if err := insertMember(ctx, r.db, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*entity.Member, error) {
	m := &entity.Member{}
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at, age, user_name, password
		FROM member
		WHERE id = $1
	`, id)
	if err := row.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.Age, &m.UserName, &m.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

var _ repository.MemberRepository = (*MemberRepository)(nil)
