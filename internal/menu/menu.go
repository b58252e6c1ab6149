// Package menu is the catalog shown in the index page's menu section and
// offered in the shopping cart.
package menu

import "fmt"

type Item struct {
	ID          string
	Name        string
	Description string
	PriceCents  int
	Image       string
	Alt         string
}

// Price formats the price in euros, e.g. "12.90 €".
func (it Item) Price() string {
	return fmt.Sprintf("%d.%02d €", it.PriceCents/100, it.PriceCents%100)
}

var catalog = []Item{
	{
		ID: "classic", Name: "Helsinki Classic", PriceCents: 1290,
		Description: "Beef patty, cheddar, pickles, onion and house sauce.",
		Image:       "/static/img/classic.svg", Alt: "Helsinki Classic burger",
	},
	{
		ID: "rye", Name: "Smoked Rye", PriceCents: 1450,
		Description: "Smoked beef on a rye bun with lingonberry mayo.",
		Image:       "/static/img/rye.svg", Alt: "Smoked Rye burger on a dark rye bun",
	},
	{
		ID: "mushroom", Name: "Mushroom Melt", PriceCents: 1390,
		Description: "Grilled portobello, emmental and truffle aioli. Vegetarian.",
		Image:       "/static/img/mushroom.svg", Alt: "Mushroom Melt vegetarian burger",
	},
	{
		ID: "fries", Name: "Dill Fries", PriceCents: 490,
		Description: "Crispy fries tossed with dill salt.",
		Image:       "/static/img/fries.svg", Alt: "Basket of dill fries",
	},
}

// Items returns a copy of the catalog in display order.
func Items() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id string) (Item, bool) {
	for _, it := range catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
