package seed

import (
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// Profile is the canned analysis a new page starts with.
type Profile struct {
	Verdict      string
	Summary      string
	Risk         []string
	Safe         []string
	Alternatives []string
	Waiter       string
}

type profileRule struct {
	needles []string
	profile Profile
}

// profileRules are tried in order against the lower-cased topic name; the
// first rule with a matching substring wins.
var profileRules = []profileRule{
	{[]string{"soy sauce"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "Traditional soy sauce is usually high risk because it is commonly brewed with wheat.",
		Risk:         []string{"Wheat", "Barley", "Hydrolyzed wheat protein"},
		Safe:         []string{"Tamari (labeled GF)", "Coconut aminos"},
		Alternatives: []string{"Tamari", "Coconut aminos", "Salt + citrus"},
		Waiter:       "Is this made with wheat-based soy sauce or gluten-free tamari?",
	}},
	{[]string{"miso", "ramen"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "This dish is often high risk due to broth bases and fermented ingredients that may include barley or wheat.",
		Risk:         []string{"Barley koji", "Wheat soy sauce", "Seasoning packets"},
		Safe:         []string{"Plain tofu", "Wakame", "Rice noodles (if separate pot)"},
		Alternatives: []string{"Clear broth", "Steamed rice", "Sashimi (no sauce)"},
		Waiter:       "Is the broth or paste made with barley, wheat, or regular soy sauce?",
	}},
	{[]string{"gochujang", "teriyaki", "oyster", "worcestershire"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "This sauce is frequently high risk because many recipes include wheat-based thickeners or soy sauce.",
		Risk:         []string{"Wheat flour", "Regular soy sauce", "Malt vinegar"},
		Safe:         []string{"Certified GF version", "Homemade alternate sauce"},
		Alternatives: []string{"Salt + sesame oil", "GF tamari blend", "Fresh herb dressing"},
		Waiter:       "Is this sauce made with wheat flour, regular soy sauce, or malt vinegar?",
	}},
	{[]string{"kimchi", "fish sauce", "rice vinegar"}, Profile{
		Verdict:      page.StatusCaution,
		Summary:      "This can be gluten-free, but ingredient brands and prep methods vary by kitchen and region.",
		Risk:         []string{"Added soy sauce", "Flavoring blends", "Cross-contact prep"},
		Safe:         []string{"Simple fermentation ingredients", "Rice vinegar", "Plain fish extract"},
		Alternatives: []string{"Plain pickled vegetables", "Steamed sides", "Fresh salad"},
		Waiter:       "Can you confirm there is no wheat, barley, rye, or regular soy sauce in this?",
	}},
	{[]string{"beer"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "Traditional beer is made from barley and is not gluten-free.",
		Risk:         []string{"Barley malt", "Wheat", "Rye"},
		Safe:         []string{"Gluten-free beer", "Cider", "Wine"},
		Alternatives: []string{"GF beer", "Hard cider", "Wine", "Spirits"},
		Waiter:       "Do you have gluten-free beer or cider?",
	}},
	{[]string{"seitan"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "Seitan is made from wheat gluten and is not gluten-free.",
		Risk:         []string{"Wheat gluten"},
		Safe:         []string{"Tofu", "Tempeh", "Legumes"},
		Alternatives: []string{"Tofu", "Tempeh", "Jackfruit", "Mushrooms"},
		Waiter:       "Is there seitan or wheat gluten in this dish?",
	}},
	{[]string{"couscous", "bulgur"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "This grain is made from wheat and is not gluten-free.",
		Risk:         []string{"Wheat"},
		Safe:         []string{"Quinoa", "Rice", "Millet"},
		Alternatives: []string{"Quinoa", "Rice", "Cauliflower rice"},
		Waiter:       "Can this be made with rice or quinoa instead?",
	}},
	{[]string{"imitation crab"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "Imitation crab often contains wheat starch as a binder.",
		Risk:         []string{"Wheat starch", "Wheat flour"},
		Safe:         []string{"Real crab", "Shrimp", "Certified GF surimi"},
		Alternatives: []string{"Real crab", "Shrimp", "Tuna"},
		Waiter:       "Is the imitation crab made with wheat? Do you have real crab?",
	}},
	{[]string{"gravy", "stuffing"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "This is typically made with wheat flour or bread.",
		Risk:         []string{"Wheat flour", "Bread", "Roux"},
		Safe:         []string{"GF gravy", "Pan juices", "GF stuffing"},
		Alternatives: []string{"Pan juices", "GF gravy", "Skip the stuffing"},
		Waiter:       "Is the gravy/stuffing made with wheat flour? Do you have GF options?",
	}},
	{[]string{"matzo"}, Profile{
		Verdict:      page.StatusUnsafe,
		Summary:      "Matzo is made from wheat flour and is not gluten-free.",
		Risk:         []string{"Wheat flour"},
		Safe:         []string{"GF matzo", "Rice cakes"},
		Alternatives: []string{"GF matzo", "Rice cakes", "Potato starch crackers"},
		Waiter:       "Do you have gluten-free matzo?",
	}},
	{[]string{"licorice"}, Profile{
		Verdict:      page.StatusCaution,
		Summary:      "Some licorice contains wheat flour as a binder.",
		Risk:         []string{"Wheat flour", "Wheat starch"},
		Safe:         []string{"Certified GF licorice", "Fruit chews"},
		Alternatives: []string{"GF licorice", "Gummy candy", "Dark chocolate"},
		Waiter:       "Check the ingredient label for wheat flour.",
	}},
}

var fallbackProfile = Profile{
	Verdict:      page.StatusCaution,
	Summary:      "This item may be gluten-free in some kitchens, but ingredients and preparation can still introduce risk.",
	Risk:         []string{"Soy sauce", "Malt flavoring", "Shared fryer oil"},
	Safe:         []string{"Plain rice", "Fresh vegetables"},
	Alternatives: []string{"Steamed rice", "Plain salad", "Grilled protein without sauce"},
	Waiter:       "Can you confirm this has no wheat, barley, rye, regular soy sauce, or shared fryer contamination?",
}

// ProfileFor returns the canned profile for a topic name. Slices are copies.
func ProfileFor(topicName string) Profile {
	lower := strings.ToLower(topicName)
	p := fallbackProfile
	for _, r := range profileRules {
		if containsAny(lower, r.needles) {
			p = r.profile
			break
		}
	}
	p.Risk = clone(p.Risk)
	p.Safe = clone(p.Safe)
	p.Alternatives = clone(p.Alternatives)
	return p
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func clone(s []string) []string { return append([]string(nil), s...) }
