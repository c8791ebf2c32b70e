package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func renderCart(w io.Writer, c *models.Cart) {
	if c == nil || len(c.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range c.Items {
		sub := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ProductID, l.Product.Name, l.Quantity, money(l.Product.Price), money(sub))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", money(c.Total))
}

func renderProducts(w io.Writer, ps []models.Product) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, money(p.Price), p.Stock)
	}
	_ = tw.Flush()
}

func renderProduct(w io.Writer, p models.Product, reviews []models.Review) {
	fmt.Fprintf(w, "#%d %s  %s\n", p.ID, p.Name, money(p.Price))
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	if p.Category != nil {
		fmt.Fprintf(w, "Category: %s\n", p.Category.Name)
	}
	fmt.Fprintf(w, "In stock: %d\n", p.Stock)
	if len(reviews) == 0 {
		return
	}
	fmt.Fprintln(w, "Reviews:")
	for _, r := range reviews {
		who := fmt.Sprintf("user %d", r.UserID)
		if r.User != nil {
			who = r.User.Username
		}
		fmt.Fprintf(w, "  %d/5 %s: %s\n", r.Rating, who, r.Comment)
	}
}

func renderCategories(w io.Writer, cs []models.Category) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No categories.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRODUCTS")
	for _, c := range cs {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", c.ID, c.Name, c.ProductsCount)
	}
	_ = tw.Flush()
}

func renderOrders(w io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", o.ID, o.Status, len(o.Items), money(o.Total), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func renderOrder(w io.Writer, o models.Order) {
	fmt.Fprintf(w, "Order #%d (%s)\n", o.ID, o.Status)
	tw := table(w)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %s\t%d x %s\n", it.Product.Name, it.Quantity, money(it.Price))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", money(o.Total))
}

func renderFavorites(w io.Writer, fs []models.Favorite) {
	if len(fs) == 0 {
		fmt.Fprintln(w, "No favorites.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tPRICE")
	for _, f := range fs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.ProductID, f.Product.Name, money(f.Product.Price))
	}
	_ = tw.Flush()
}
