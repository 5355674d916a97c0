package scene

// Category tags what kind of footprint a template has. The variant is
// resolved once when an item is created; geometry code only ever sees the
// resolved rectangle dimensions.
type Category string

const (
	CategoryRectangle Category = "rectangle"
	CategorySpecial   Category = "special"
)

// Template is a static catalog entry describing a placeable item type.
type Template struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	LengthFt float64  `json:"lengthFt"`
	WidthFt  float64  `json:"widthFt"`

	// Footprint is the outline for special shapes, in local coordinates
	// relative to the template center. Empty for plain rectangles.
	Footprint []Point `json:"footprint,omitempty"`
}

// Catalog is a fixed set of templates keyed by id.
type Catalog struct {
	templates map[string]Template
	order     []string
}

func NewCatalog(templates []Template) *Catalog {
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if t.ID == "" || t.LengthFt <= 0 || t.WidthFt <= 0 {
			continue
		}
		if t.Category == "" {
			t.Category = CategoryRectangle
		}
		if _, dup := c.templates[t.ID]; dup {
			continue
		}
		c.templates[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c
}

func (c *Catalog) Get(id string) (Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// List returns templates in registration order.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// DefaultCatalog is the built-in template set used when no catalog is
// supplied. Dimensions are real-world feet.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Template{
		{ID: "tpl_car", Name: "Car", Category: CategoryRectangle, LengthFt: 15, WidthFt: 6},
		{ID: "tpl_truck", Name: "Pickup Truck", Category: CategoryRectangle, LengthFt: 20, WidthFt: 7},
		{ID: "tpl_rv", Name: "RV", Category: CategoryRectangle, LengthFt: 30, WidthFt: 8.5},
		{ID: "tpl_trailer", Name: "Utility Trailer", Category: CategoryRectangle, LengthFt: 12, WidthFt: 6.5},
		{ID: "tpl_boat", Name: "Boat on Trailer", Category: CategorySpecial, LengthFt: 24, WidthFt: 8.5,
			Footprint: []Point{{X: -12, Y: 0}, {X: -6, Y: -4.25}, {X: 12, Y: -4.25}, {X: 12, Y: 4.25}, {X: -6, Y: 4.25}}},
		{ID: "tpl_shelf", Name: "Storage Shelf", Category: CategoryRectangle, LengthFt: 8, WidthFt: 2},
		{ID: "tpl_workbench", Name: "Workbench", Category: CategoryRectangle, LengthFt: 6, WidthFt: 2.5},
		{ID: "tpl_cabinet", Name: "Cabinet", Category: CategoryRectangle, LengthFt: 3, WidthFt: 2},
	})
}
