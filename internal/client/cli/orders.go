package cli

import "context"

func (a *App) listOrders(ctx context.Context, args []string) error {
	page, err := optInt(args, 0, 1)
	if err != nil {
		return err
	}
	skip, limit, err := pageArgs(page)
	if err != nil {
		return err
	}
	orders, err := a.orders.ListOrders(ctx, skip, limit)
	if err != nil {
		return err
	}
	renderOrders(a.out, orders)
	return nil
}

func (a *App) order(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	o, err := a.orders.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	renderOrder(a.out, o)
	return nil
}

func (a *App) listFavorites(ctx context.Context, _ []string) error {
	fs, err := a.favorites.List(ctx)
	if err != nil {
		return err
	}
	renderFavorites(a.out, fs)
	return nil
}

func (a *App) fav(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	f, err := a.favorites.Add(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Added %s to favorites.\n", f.Product.Name)
	return nil
}

func (a *App) unfav(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.favorites.Remove(ctx, id); err != nil {
		return err
	}
	a.println("Removed from favorites.")
	return nil
}
