package cli

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func (a *App) newProduct(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Product name", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	rawPrice, err := getSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		a.println("Price must be a decimal number.")
		return nil
	}
	rawStock, err := getSimpleText(a.reader, "Stock", a.out)
	if err != nil {
		return err
	}
	stock, err := strconv.Atoi(rawStock)
	if err != nil {
		a.println("Stock must be a whole number.")
		return nil
	}
	rawCat, err := getSimpleText(a.reader, "Category id (empty for none)", a.out)
	if err != nil {
		return err
	}
	var catID int64
	if rawCat != "" {
		if catID, err = strconv.ParseInt(rawCat, 10, 64); err != nil {
			a.println("Category id must be a number.")
			return nil
		}
	}

	p, err := a.catalog.CreateProduct(ctx, models.ProductCreate{
		Name: name, Description: desc, Price: price, Stock: stock, CategoryID: catID,
	})
	if err != nil {
		return err
	}
	a.printf("Created product #%d.\n", p.ID)
	return nil
}

func (a *App) setPrice(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errUsage
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return errUsage
	}
	p, err := a.catalog.UpdateProduct(ctx, id, models.ProductUpdate{Price: &price})
	if err != nil {
		return err
	}
	a.printf("%s now costs %s.\n", p.Name, money(p.Price))
	return nil
}

func (a *App) deleteProduct(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}
	a.println("Product deleted.")
	return nil
}

func (a *App) newCategory(ctx context.Context, args []string) error {
	name := rest(args, 0)
	if name == "" {
		return errUsage
	}
	c, err := a.catalog.CreateCategory(ctx, models.CategoryCreate{Name: name})
	if err != nil {
		return err
	}
	a.printf("Created category #%d.\n", c.ID)
	return nil
}

func (a *App) deleteCategory(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if err := a.catalog.DeleteCategory(ctx, id); err != nil {
		return err
	}
	a.println("Category deleted.")
	return nil
}

func (a *App) orderStatus(ctx context.Context, args []string) error {
	id, err := argID(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errUsage
	}
	o, err := a.orders.UpdateOrderStatus(ctx, id, args[1])
	if err != nil {
		return err
	}
	a.printf("Order #%d is now %s.\n", o.ID, o.Status)
	return nil
}
