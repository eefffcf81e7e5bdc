package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/pantrykeeper/internal/client/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

// argOrPrompt returns args[i] when present and asks for it otherwise.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func parseQuantity(s string) (float64, error) {
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

// Add reports a food item. Reports with the same name, unit and expiration
// date are merged by the server.
func (a *App) Add(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	qty, err := getSimpleText(a.reader, "Quantity", a.out)
	if err != nil {
		return err
	}
	q, err := parseQuantity(qty)
	if err != nil {
		return err
	}
	unit, err := getSimpleText(a.reader, "Unit (e.g. l, kg, pcs)", a.out)
	if err != nil {
		return err
	}
	exp, err := getSimpleText(a.reader, "Expiration date (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}
	if _, err := timex.ParseDate(exp); err != nil {
		return err
	}

	res, err := a.api.AddLot(ctx, models.LotInput{Name: name, Quantity: q, Unit: unit, ExpirationDate: exp})
	if err != nil {
		return err
	}

	a.printf("%s: %s now %g %s (id %s)\n", res.Action, res.Lot.Name, res.Lot.Quantity, res.Lot.Unit, res.Lot.ID)
	return nil
}

func (a *App) printLots(lots []models.Lot) {
	if len(lots) == 0 {
		a.printf("Nothing here\n")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tUNIT\tEXPIRES")
	for _, l := range lots {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\n", l.ID, l.Name, l.Quantity, l.Unit, l.ExpirationDate)
	}
	_ = tw.Flush()
}

func (a *App) List(ctx context.Context) error {
	lots, err := a.api.ListLots(ctx)
	if err != nil {
		return err
	}
	a.printLots(lots)
	return nil
}

// Expiring lists lots expiring within the given number of days, five by
// default.
func (a *App) Expiring(ctx context.Context, args []string) error {
	days := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number of days %q", args[0])
		}
		days = n
	}

	lots, err := a.api.ExpiringLots(ctx, days)
	if err != nil {
		return err
	}
	a.printLots(lots)
	return nil
}

func (a *App) Consume(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Lot ID")
	if err != nil {
		return err
	}
	qty, err := a.argOrPrompt(args, 1, "Quantity used")
	if err != nil {
		return err
	}
	q, err := parseQuantity(qty)
	if err != nil {
		return err
	}

	res, err := a.api.ConsumeLot(ctx, id, q)
	if err != nil {
		return err
	}
	if res.Removed || res.Lot == nil {
		a.printf("Lot %s used up and removed\n", id)
		return nil
	}
	a.printf("%g %s of %s left\n", res.Lot.Quantity, res.Lot.Unit, res.Lot.Name)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Lot ID")
	if err != nil {
		return err
	}
	if err := a.api.DeleteLot(ctx, id); err != nil {
		return err
	}
	a.printf("Removed %s\n", id)
	return nil
}

// Clear empties the whole inventory after a confirmation.
func (a *App) Clear(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Remove ALL items? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		a.printf("Cancelled\n")
		return nil
	}

	n, err := a.api.ClearLots(ctx)
	if err != nil {
		return err
	}
	a.printf("Removed %d items\n", n)
	return nil
}
