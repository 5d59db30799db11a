package application

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	repo "github.com/oksasatya/idol-catalog/internal/domain/repository"
	"github.com/oksasatya/idol-catalog/pkg/events"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

var catalogStats = expvar.NewMap("catalog")

type IdolService struct {
	Idols    repo.IdolRepository
	Members  repo.MemberRepository
	Events   EventPublisher
	Images   ImageStore
	Search   *IdolIndexer
	Logger   *logrus.Logger
	PageSize int
}

// NewIdolService builds the service. pageSize may shrink the recent listing
// but never grows it past repository.DefaultPageSize.
func NewIdolService(idols repo.IdolRepository, members repo.MemberRepository, events EventPublisher, images ImageStore, search *IdolIndexer, logger *logrus.Logger, pageSize int) *IdolService {
	if pageSize <= 0 || pageSize > repo.DefaultPageSize {
		pageSize = repo.DefaultPageSize
	}
	return &IdolService{
		Idols:    idols,
		Members:  members,
		Events:   events,
		Images:   images,
		Search:   search,
		Logger:   logger,
		PageSize: pageSize,
	}
}

type CreateMemberInput struct {
	Name     string
	Age      int
	UserName string
	Password string
}

func (in CreateMemberInput) build() (*entity.Member, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &entity.Member{
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
		Age:       in.Age,
		UserName:  in.UserName,
		Password:  hash,
	}, nil
}

// Recent returns one page of idols, newest first.
func (s *IdolService) Recent(ctx context.Context, page int) ([]*entity.Idol, error) {
	return s.Idols.FindAllRecent(ctx, page, s.PageSize)
}

func (s *IdolService) Get(ctx context.Context, id int64) (*entity.Idol, error) {
	idol, err := s.Idols.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if idol == nil {
		return nil, fmt.Errorf("idol %d: %w", id, domain.ErrNotFound)
	}
	return idol, nil
}

// CreateIdol saves a new aggregate with its members in one transaction.
func (s *IdolService) CreateIdol(ctx context.Context, name string, members []CreateMemberInput) (*entity.Idol, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("idol name: %w", domain.ErrInvalidArgument)
	}
	idol := entity.NewIdol(name)
	for _, in := range members {
		m, err := in.build()
		if err != nil {
			return nil, err
		}
		if err := idol.AddMember(m); err != nil {
			return nil, err
		}
	}
	saved, err := s.Idols.Save(ctx, idol)
	if err != nil {
		return nil, err
	}
	catalogStats.Add("idols_created", 1)
	s.publish(ctx, events.Upserted(saved))
	return saved, nil
}

// CreateMember stores a member. Without idolID the member stays detached;
// otherwise it is attached to that idol inside the idol's transaction.
func (s *IdolService) CreateMember(ctx context.Context, in CreateMemberInput, idolID *int64) (*entity.Member, error) {
	m, err := in.build()
	if err != nil {
		return nil, err
	}
	if idolID == nil {
		created, err := s.Members.Create(ctx, m)
		if err != nil {
			return nil, err
		}
		catalogStats.Add("members_created", 1)
		return created, nil
	}
	idol, err := s.Idols.Update(ctx, *idolID, func(i *entity.Idol) error {
		return i.AddMember(m)
	})
	if err != nil {
		return nil, err
	}
	catalogStats.Add("members_created", 1)
	s.publish(ctx, events.Upserted(idol))
	return m, nil
}

// Patch merges p into an existing idol. A missing id fails with
// domain.ErrNotFound; nothing is created.
func (s *IdolService) Patch(ctx context.Context, id int64, p entity.IdolPatch) (*entity.Idol, error) {
	idol, err := s.Idols.Update(ctx, id, func(i *entity.Idol) error {
		p.Apply(i)
		return nil
	})
	if err != nil {
		return nil, err
	}
	catalogStats.Add("idols_patched", 1)
	s.publish(ctx, events.Upserted(idol))
	return idol, nil
}

// Delete removes the idol and its members. Missing ids succeed.
func (s *IdolService) Delete(ctx context.Context, id int64) error {
	if err := s.Idols.DeleteByID(ctx, id); err != nil {
		return err
	}
	catalogStats.Add("idols_deleted", 1)
	s.publish(ctx, events.Deleted(id))
	return nil
}

// UploadImage stores an image for the idol and records its public URL.
func (s *IdolService) UploadImage(ctx context.Context, id int64, r io.Reader, filename, contentType string) (*entity.Idol, error) {
	if s.Images == nil {
		return nil, fmt.Errorf("image storage: %w", domain.ErrUnavailable)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("content type %q: %w", contentType, domain.ErrInvalidArgument)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := fmt.Sprintf("idols/%d/%s%s", id, uuid.NewString(), ext)
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}
	idol, err := s.Idols.Update(ctx, id, func(i *entity.Idol) error {
		i.ImageURL = url
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Upserted(idol))
	return idol, nil
}

// SearchIdols queries the search index; an unconfigured index yields no hits.
func (s *IdolService) SearchIdols(ctx context.Context, q string, size int) ([]events.IdolDoc, error) {
	if s.Search == nil {
		return []events.IdolDoc{}, nil
	}
	return s.Search.Search(ctx, q, size)
}

func (s *IdolService) publish(ctx context.Context, evt events.IdolEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"type": evt.Type, "idol_id": evt.IdolID}).Warn("publish idol event failed")
	}
}
