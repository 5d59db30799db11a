package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/internal/domain/repository"
)

const idolColumns = `id, name, created_at, cnt_member, image_url`

type IdolRepository struct {
	db DB
}

func NewIdolRepository(db DB) *IdolRepository {
	return &IdolRepository{db: db}
}

func scanIdol(row pgx.Row) (*entity.Idol, error) {
	i := &entity.Idol{Members: []*entity.Member{}}
	if err := row.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.CntMember, &i.ImageURL); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *IdolRepository) FindByID(ctx context.Context, id int64) (*entity.Idol, error) {
	return r.findOne(ctx, r.db, `SELECT `+idolColumns+` FROM idol WHERE id = $1`, id)
}

func (r *IdolRepository) FindByName(ctx context.Context, name string) (*entity.Idol, error) {
	return r.findOne(ctx, r.db, `SELECT `+idolColumns+` FROM idol WHERE name = $1 ORDER BY id LIMIT 1`, name)
}

func (r *IdolRepository) findOne(ctx context.Context, q Querier, sql string, arg any) (*entity.Idol, error) {
	idol, err := scanIdol(q.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := loadMembers(ctx, q, idol); err != nil {
		return nil, err
	}
	return idol, nil
}

func (r *IdolRepository) FindAllRecent(ctx context.Context, page, size int) ([]*entity.Idol, error) {
	if size <= 0 {
		size = repository.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	if page > math.MaxInt/size {
		return []*entity.Idol{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+idolColumns+`
		FROM idol
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, size, page*size)
	if err != nil {
		return nil, err
	}
	idols := make([]*entity.Idol, 0, size)
	for rows.Next() {
		idol, err := scanIdol(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		idols = append(idols, idol)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadMembers(ctx, r.db, idols...); err != nil {
		return nil, err
	}
	return idols, nil
}

// loadMembers attaches members through AddMember, then restores the stored
// count, which may legitimately differ after a PATCH.
func loadMembers(ctx context.Context, q Querier, idols ...*entity.Idol) error {
	if len(idols) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(idols))
	byID := make(map[int64]*entity.Idol, len(idols))
	stored := make(map[int64]int, len(idols))
	for _, i := range idols {
		ids = append(ids, i.ID)
		byID[i.ID] = i
		stored[i.ID] = i.CntMember
	}

	rows, err := q.Query(ctx, `
		SELECT id, name, created_at, age, user_name, password, id_idol
		FROM member
		WHERE id_idol = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		m := &entity.Member{}
		var idolID int64
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.Age, &m.UserName, &m.Password, &idolID); err != nil {
			return err
		}
		if owner, ok := byID[idolID]; ok {
			if err := owner.AddMember(m); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, i := range idols {
		i.CntMember = stored[i.ID]
	}
	return nil
}

func (r *IdolRepository) Save(ctx context.Context, idol *entity.Idol) (*entity.Idol, error) {
	if idol == nil {
		return nil, fmt.Errorf("save idol: %w", domain.ErrInvalidArgument)
	}
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if idol.ID == 0 {
			if idol.CreatedAt.IsZero() {
				idol.CreatedAt = time.Now().UTC()
			}
			var id int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO idol (name, created_at, cnt_member, image_url)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, idol.Name, idol.CreatedAt, idol.CntMember, idol.ImageURL).Scan(&id); err != nil {
				return err
			}
			idol.AssignID(id)
			return insertMembers(ctx, tx, idol)
		}
		return persist(ctx, tx, idol)
	})
	if err != nil {
		return nil, err
	}
	return idol, nil
}

func (r *IdolRepository) Update(ctx context.Context, id int64, fn func(*entity.Idol) error) (*entity.Idol, error) {
	var out *entity.Idol
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		idol, err := scanIdol(tx.QueryRow(ctx, `SELECT `+idolColumns+` FROM idol WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("idol %d: %w", id, domain.ErrNotFound)
			}
			return err
		}
		if err := loadMembers(ctx, tx, idol); err != nil {
			return err
		}
		if err := fn(idol); err != nil {
			return err
		}
		if err := persist(ctx, tx, idol); err != nil {
			return err
		}
		out = idol
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func persist(ctx context.Context, tx pgx.Tx, idol *entity.Idol) error {
	res, err := tx.Exec(ctx, `
		UPDATE idol
		SET name = $1, created_at = $2, cnt_member = $3, image_url = $4
		WHERE id = $5
	`, idol.Name, idol.CreatedAt, idol.CntMember, idol.ImageURL, idol.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("idol %d: %w", idol.ID, domain.ErrNotFound)
	}
	return insertMembers(ctx, tx, idol)
}

func insertMembers(ctx context.Context, tx pgx.Tx, idol *entity.Idol) error {
	for _, m := range idol.Pending() {
		if err := insertMember(ctx, tx, m); err != nil {
			return err
		}
	}
	return nil
}

func insertMember(ctx context.Context, q Querier, m *entity.Member) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var idolRef any
	if id, ok := m.IdolID(); ok {
		idolRef = id
	}
	return q.QueryRow(ctx, `
		INSERT INTO member (name, created_at, age, user_name, password, id_idol)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.Name, m.CreatedAt, m.Age, m.UserName, m.Password, idolRef).Scan(&m.ID)
}

func (r *IdolRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM idol WHERE id = $1`, id)
	return err
}

var _ repository.IdolRepository = (*IdolRepository)(nil)
