package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pantrykeeper/internal/client/models"
)

// parseIngredient reads "name[, quantity[, unit]]".
func parseIngredient(line string) (models.Ingredient, error) {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ing := models.Ingredient{Name: parts[0]}
	if ing.Name == "" {
		return ing, fmt.Errorf("ingredient %q: name is empty", line)
	}
	if len(parts) > 1 && parts[1] != "" {
		q, err := parseQuantity(parts[1])
		if err != nil {
			return ing, fmt.Errorf("ingredient %q: %w", line, err)
		}
		ing.Quantity = q
	}
	if len(parts) > 2 {
		ing.Unit = parts[2]
	}
	return ing, nil
}

func (a *App) AddRecipe(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	lines, err := GetLines(a.reader, "Ingredients, one per line: name, quantity, unit", a.out)
	if err != nil {
		return err
	}

	in := models.RecipeInput{Title: title, Description: description, Ingredients: make([]models.Ingredient, 0, len(lines))}
	for _, l := range lines {
		ing, err := parseIngredient(l)
		if err != nil {
			return err
		}
		in.Ingredients = append(in.Ingredients, ing)
	}

	r, err := a.api.SaveRecipe(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Saved recipe %q (id %s) with %d ingredients\n", r.Title, r.ID, len(r.Ingredients))
	return nil
}

func (a *App) Recipes(ctx context.Context) error {
	list, err := a.api.ListRecipes(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No recipes yet\n")
		return nil
	}
	for _, r := range list {
		names := make([]string, 0, len(r.Ingredients))
		for _, i := range r.Ingredients {
			names = append(names, i.Name)
		}
		a.printf("%s  %s: %s\n", r.ID, r.Title, strings.Join(names, ", "))
	}
	return nil
}

func (a *App) Suggest(ctx context.Context) error {
	list, err := a.api.Suggest(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No suggestions, add some recipes first\n")
		return nil
	}
	for _, s := range list {
		switch s.Kind {
		case "feasible":
			a.printf("[ready]   %s\n", s.Title)
		default:
			a.printf("[missing] %s: %s\n", s.Title, strings.Join(s.MissingIngredients, ", "))
		}
	}
	return nil
}

// Photo uploads a local image as the recipe photo through a presigned URL.
func (a *App) Photo(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Recipe ID")
	if err != nil {
		return err
	}
	path, err := a.argOrPrompt(args, 1, "Path to image file")
	if err != nil {
		return err
	}

	data, err := readFile(path)
	if err != nil {
		return err
	}

	up, err := a.api.PhotoUploadURL(ctx, id)
	if err != nil {
		return err
	}
	if err := a.api.UploadPhoto(ctx, up.UploadURL, data); err != nil {
		return err
	}
	a.printf("Photo uploaded as %s\n", up.PhotoKey)
	return nil
}
