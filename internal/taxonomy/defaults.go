package taxonomy

// DefaultRules is the guide taxonomy. Only the sauces rule looks at titles.
func DefaultRules() []Rule {
	return []Rule{
		{Category: Sauces, Keywords: []string{"sauce"}, MatchTitle: true},
		{Category: Noodles, Keywords: []string{"noodle", "vermicelli", "pasta", "tortilla", "wrapper", "dumpling", "spring-roll"}},
		{Category: Breakfast, Keywords: []string{"egg", "pancake", "waffle", "bacon", "oat", "hash-brown", "omelette"}},
		{Category: BreadBaked, Keywords: []string{"bread", "bagel", "croissant", "pretzel", "matzo", "crumb"}},
		{Category: Asian, Keywords: []string{"miso", "ramen", "pho", "pad-thai", "teriyaki", "sushi", "tempura", "kimchi", "gochujang", "hoisin", "oyster", "soy", "tamari", "tempeh", "edamame"}},
		{Category: Condiments, Keywords: []string{"vinegar", "mustard", "ketchup", "mayonnaise", "tzatziki"}},
		{Category: Meals, Keywords: []string{"stir-fry", "curry", "chicken", "meatball", "sausage", "nugget", "fish-and-chips", "sweet-and-sour", "stuffing", "stew"}},
	}
}

// DefaultOrder is the natural category order.
func DefaultOrder() []Category {
	return []Category{Sauces, Noodles, Breakfast, Meals, BreadBaked, Asian, Condiments, Other}
}

// DefaultComplements maps each category to the categories whose pages make good related links.
func DefaultComplements() map[Category][]Category {
	return map[Category][]Category{
		Sauces:     {Asian, Condiments, Meals},
		Noodles:    {Asian, Meals, Sauces},
		Breakfast:  {BreadBaked, Meals, Noodles},
		Meals:      {Sauces, Asian, Noodles},
		BreadBaked: {Breakfast, Meals, Other},
		Asian:      {Sauces, Noodles, Meals},
		Condiments: {Sauces, Meals, Asian},
		Other:      {Breakfast, Meals, Asian, BreadBaked},
	}
}

// Default returns the built-in guide taxonomy.
func Default() *Taxonomy {
	t, err := New(DefaultRules(), DefaultOrder(), Other, DefaultComplements())
	if err != nil {
		panic(err)
	}
	return t
}
