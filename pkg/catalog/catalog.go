package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Item describes a bookable salon service.
type Item struct {
	Id    string
	Name  string
	Price float64
	Emoji string
}

// Label renders the item as shown on appointment cards, e.g. "Haircut 💇".
func (i Item) Label() string {
	if i.Emoji == "" {
		return i.Name
	}
	return i.Name + " " + i.Emoji
}

type Catalog struct {
	items map[string]Item
}

var defaultItems = []Item{
	{Id: "haircut", Name: "Haircut", Price: 100, Emoji: "💇"},
	{Id: "coloring", Name: "Coloring", Price: 500, Emoji: "🎨"},
	{Id: "smoothening", Name: "Smoothening", Price: 350, Emoji: "✨"},
	{Id: "beard", Name: "Beard Trim", Price: 100, Emoji: "🧔"},
}

// New builds a catalog from the built-in services, replaced or extended by overrides.
// Empty fields of an override keep the built-in value.
func New(overrides ...Item) *Catalog {
	c := &Catalog{items: make(map[string]Item, len(defaultItems)+len(overrides))}
	for _, item := range defaultItems {
		c.items[item.Id] = item
	}
	for _, o := range overrides {
		id := strings.ToLower(strings.TrimSpace(o.Id))
		if id == "" {
			continue
		}
		item := c.items[id]
		item.Id = id
		if o.Name != "" {
			item.Name = o.Name
		}
		if o.Price != 0 {
			item.Price = o.Price
		}
		if o.Emoji != "" {
			item.Emoji = o.Emoji
		}
		if item.Name == "" {
			item.Name = id
		}
		c.items[id] = item
	}
	return c
}

func (c *Catalog) Lookup(id string) (Item, bool) {
	item, ok := c.items[strings.ToLower(id)]
	return item, ok
}

// DisplayName returns the label of a known service, or the raw id otherwise.
func (c *Catalog) DisplayName(id string) string {
	if item, ok := c.Lookup(id); ok {
		return item.Label()
	}
	return id
}

// Items returns all services ordered by id.
func (c *Catalog) Items() []Item {
	items := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Id < items[j].Id })
	return items
}

// FormatPrice renders an amount with the given currency symbol, dropping zero decimals.
func FormatPrice(currency string, amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%s%d", currency, int64(amount))
	}
	return fmt.Sprintf("%s%.2f", currency, amount)
}
