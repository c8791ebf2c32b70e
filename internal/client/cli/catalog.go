package cli

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func (a *App) products(ctx context.Context, args []string) error {
	var q models.ProductQuery
	cat, err := optInt(args, 0, 0)
	if err != nil || cat < 0 {
		return errUsage
	}
	q.CategoryID = int64(cat)
	page, err := optInt(args, 1, 1)
	if err != nil {
		return err
	}
	if q.Skip, q.Limit, err = pageArgs(page); err != nil {
		return err
	}

	ps, err := a.catalog.ListProducts(ctx, q)
	if err != nil {
		return err
	}
	renderProducts(a.out, ps)
	return nil
}

// product shows the product with its first page of reviews. A failed review
// fetch is logged and the product is still shown.
func (a *App) product(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	reviews, err := a.catalog.Reviews(ctx, id, 0, pageSize)
	if err != nil {
		a.log.Warn(ctx, "reviews unavailable", "product_id", id, "err", err)
	}
	renderProduct(a.out, p, reviews)
	if line, ok := a.store.Snapshot().Cart.Cart.Line(id); ok {
		a.printf("In your cart: %d\n", line.Quantity)
	}
	return nil
}

func (a *App) categories(ctx context.Context, _ []string) error {
	cs, err := a.catalog.ListCategories(ctx, 0, 100)
	if err != nil {
		return err
	}
	renderCategories(a.out, cs)
	return nil
}

func (a *App) review(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	rating, err := argInt(args, 1)
	if err != nil {
		return err
	}
	if _, err := a.catalog.AddReview(ctx, models.ReviewCreate{ProductID: id, Rating: rating, Comment: rest(args, 2)}); err != nil {
		return err
	}
	a.println("Review saved.")
	return nil
}

func (a *App) unreview(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.catalog.DeleteReview(ctx, id); err != nil {
		return err
	}
	a.println("Review deleted.")
	return nil
}
