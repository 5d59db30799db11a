package repository

import (
	"context"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
)

// MemberRepository stores members that are created outside an idol aggregate.
type MemberRepository interface {
	Create(ctx context.Context, m *entity.Member) (*entity.Member, error)
	FindByID(ctx context.Context, id int64) (*entity.Member, error)
}
