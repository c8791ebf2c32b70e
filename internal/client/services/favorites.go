package services

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/store"
)

// FavoritesService manages the signed-in user's favorite products.
type FavoritesService struct {
	api     client.FavoritesAPI
	session SessionReader
}

func NewFavoritesService(api client.FavoritesAPI, session SessionReader) *FavoritesService {
	return &FavoritesService{api: api, session: session}
}

func (s *FavoritesService) List(ctx context.Context) ([]models.Favorite, error) {
	const op = "list_favorites"
	if err := requireUser(s.session); err != nil {
		return nil, store.Classify(op, err)
	}
	out, err := s.api.ListFavorites(ctx)
	return out, store.Classify(op, err)
}

func (s *FavoritesService) Add(ctx context.Context, productID int64) (models.Favorite, error) {
	const op = "add_favorite"
	if err := requireUser(s.session); err != nil {
		return models.Favorite{}, store.Classify(op, err)
	}
	if err := requireID(productID); err != nil {
		return models.Favorite{}, store.Classify(op, err)
	}
	f, err := s.api.AddFavorite(ctx, productID)
	return f, store.Classify(op, err)
}

func (s *FavoritesService) Remove(ctx context.Context, productID int64) error {
	const op = "remove_favorite"
	if err := requireUser(s.session); err != nil {
		return store.Classify(op, err)
	}
	if err := requireID(productID); err != nil {
		return store.Classify(op, err)
	}
	return store.Classify(op, s.api.RemoveFavorite(ctx, productID))
}
