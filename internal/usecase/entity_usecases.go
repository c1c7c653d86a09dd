package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/commerce-service/internal/domain"
)

// ManageEntities CRUD справочника (клиенты, поставщики, товары, специальные цены).
type ManageEntities[T domain.Entity[T]] struct {
	Repo  domain.EntityRepository[T]
	NewID func() string
}

func (uc ManageEntities[T]) Create(ctx context.Context, e T) (T, error) {
	var zero T
	if err := e.Validate(); err != nil {
		return zero, err
	}
	e = e.WithID(uc.newID())
	if err := uc.Repo.Create(ctx, e); err != nil {
		return zero, err
	}
	return e, nil
}

func (uc ManageEntities[T]) Get(ctx context.Context, id string) (T, error) {
	return uc.Repo.Get(ctx, id)
}

func (uc ManageEntities[T]) List(ctx context.Context) ([]T, error) {
	return uc.Repo.List(ctx)
}

// Update заменяет запись целиком; удалённые и отсутствующие записи дают ErrNotFound.
func (uc ManageEntities[T]) Update(ctx context.Context, id string, e T) (T, error) {
	var zero T
	if err := e.Validate(); err != nil {
		return zero, err
	}
	e = e.WithID(id)
	if err := uc.Repo.Update(ctx, e); err != nil {
		return zero, err
	}
	return e, nil
}

func (uc ManageEntities[T]) Delete(ctx context.Context, id string) error {
	return uc.Repo.SoftDelete(ctx, id)
}

func (uc ManageEntities[T]) newID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	// v7 упорядочен по времени создания
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
