package cli

import "context"

func (a *App) showCart() {
	renderCart(a.out, a.store.Snapshot().Cart.Cart)
}

func (a *App) cart(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		a.println("Not signed in.")
		return nil
	}
	if err := a.store.FetchCart(ctx); err != nil {
		return err
	}
	a.showCart()
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	qty, err := optInt(args, 1, 1)
	if err != nil {
		return err
	}
	if err := a.store.AddItem(ctx, id, qty); err != nil {
		return err
	}
	a.showCart()
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.store.RemoveItem(ctx, id); err != nil {
		return err
	}
	a.showCart()
	return nil
}

func (a *App) qty(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	n, err := argInt(args, 1)
	if err != nil {
		return err
	}
	if err := a.store.UpdateQuantity(ctx, id, n); err != nil {
		return err
	}
	a.showCart()
	return nil
}

func (a *App) dec(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.store.Decrement(ctx, id); err != nil {
		return err
	}
	a.showCart()
	return nil
}

func (a *App) clear(ctx context.Context, _ []string) error {
	if err := a.store.ClearCart(ctx); err != nil {
		return err
	}
	a.println("Cart cleared.")
	return nil
}

func (a *App) checkout(ctx context.Context, _ []string) error {
	order, err := a.store.Checkout(ctx)
	if order.ID != 0 {
		a.printf("Order #%d placed, total %s.\n", order.ID, money(order.Total))
	}
	return err
}
