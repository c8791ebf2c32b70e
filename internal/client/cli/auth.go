package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) register(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if err := a.store.Register(ctx, models.UserCreate{Email: email, Username: username, Password: password}); err != nil {
		return err
	}
	a.println("Registered and signed in as", username)
	return nil
}

// login accepts a username or an email; an identity containing "@" uses the
// email endpoint.
func (a *App) login(ctx context.Context, args []string) error {
	identity := rest(args, 0)
	if identity == "" {
		var err error
		if identity, err = getSimpleText(a.reader, "Enter username or email", a.out); err != nil {
			return err
		}
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: identity, Password: password}
	if strings.Contains(identity, "@") {
		creds = models.Credentials{Email: identity, Password: password}
	}
	if err := a.store.Login(ctx, creds); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	a.println("Signed in as", snap.Session.User.Username)
	if snap.Cart.Cart != nil && len(snap.Cart.Cart.Items) > 0 {
		a.printf("Your cart has %d item(s).\n", snap.Cart.Cart.Count())
	}
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.println("Signed out.")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	u := a.store.Snapshot().Session.User
	if u == nil {
		a.println("Not signed in.")
		return nil
	}
	role := "customer"
	if u.IsAdmin {
		role = "admin"
	}
	a.printf("%s <%s> (%s, id %d)\n", u.Username, u.Email, role, u.ID)
	return nil
}

// profile prompts for each field; an empty answer keeps the current value.
func (a *App) profile(ctx context.Context, _ []string) error {
	var upd models.UserUpdate
	ask := func(prompt string, dst **string) error {
		v, err := getSimpleText(a.reader, prompt+" (empty to keep)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = &v
		}
		return nil
	}
	if err := ask("New email", &upd.Email); err != nil {
		return err
	}
	if err := ask("New username", &upd.Username); err != nil {
		return err
	}
	a.println("New password (empty to keep)")
	pw, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	if pw != "" {
		upd.Password = &pw
	}

	if err := a.store.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	return a.whoami(ctx, nil)
}
