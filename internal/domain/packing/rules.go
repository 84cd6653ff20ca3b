package packing

// Category names emitted by the rule engine, in emission order.
const (
	CategoryEssentials        = "Essentials"
	CategoryClothing          = "Clothing"
	CategoryWeatherEssentials = "Weather Essentials"
	CategoryToiletries        = "Toiletries"
	CategoryActivities        = "Activities"
)

// Categorize maps trip attributes to a packing list. It is pure: identical
// inputs always produce identical, identically ordered output.
func Categorize(occasion Occasion, activities []Activity, kind WeatherKind, durationDays int) []Category {
	if durationDays < 1 {
		durationDays = 1
	}
	categories := []Category{
		essentials(occasion),
		clothing(occasion, kind, durationDays),
	}
	if c := weatherEssentials(kind); len(c.Items) > 0 {
		categories = append(categories, c)
	}
	categories = append(categories, toiletries(occasion, kind))
	if c := activityGear(activities); len(c.Items) > 0 {
		categories = append(categories, c)
	}
	return categories
}

// CategorizeTrip applies Categorize to a trip.
func CategorizeTrip(trip Trip) []Category {
	return Categorize(trip.Occasion, trip.Activities, trip.ExpectedWeather, trip.DurationDays())
}

// itemList appends items in order and merges repeated names.
type itemList struct {
	items []Item
	index map[string]int
}

func (l *itemList) add(name string, qty int) {
	if qty < 1 {
		qty = 1
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[name]; ok {
		if qty > l.items[i].Quantity {
			l.items[i].Quantity = qty
		}
		return
	}
	l.index[name] = len(l.items)
	l.items = append(l.items, Item{Name: name, Quantity: qty})
}

func (l *itemList) category(name string) Category {
	return Category{Name: name, Items: l.items}
}

func essentials(occasion Occasion) Category {
	var l itemList
	l.add("Passport/ID", 1)
	l.add("Wallet", 1)
	l.add("Phone", 1)
	l.add("Phone Charger", 1)
	l.add("Medications", 1)
	l.add("Travel Documents", 1)
	if occasion == OccasionBusiness || occasion == OccasionConference {
		l.add("Laptop", 1)
		l.add("Laptop Charger", 1)
		l.add("Business Cards", 1)
	}
	return l.category(CategoryEssentials)
}

func clothing(occasion Occasion, kind WeatherKind, days int) Category {
	topsQty := days
	bottomsQty := max(2, (days+1)/2)
	underwearQty := days + 1
	socksQty := days + 1

	var l itemList
	switch occasion {
	case OccasionWedding:
		l.add("Wedding Attire", 1)
		l.add("Formal Shoes", 1)
		l.add("Casual Tops", topsQty)
		l.add("Casual Pants", bottomsQty)
	case OccasionBusiness, OccasionConference:
		l.add("Business Suits", min(3, (days+1)/2))
		l.add("Dress Shirts", topsQty)
		l.add("Dress Pants", bottomsQty)
		l.add("Ties", min(3, days))
		l.add("Dress Shoes", 1)
	case OccasionRomantic:
		l.add("Evening Wear", min(3, max(1, days/2)))
		l.add("Smart Casual Outfits", topsQty)
		l.add("Pants/Skirts", bottomsQty)
	default:
		l.add("Tops/T-Shirts", topsQty)
		l.add("Pants", bottomsQty)
		if kind == WeatherHot || kind == WeatherWarm {
			l.add("Shorts", bottomsQty)
		}
	}

	l.add("Underwear", underwearQty)
	l.add("Socks", socksQty)
	l.add("Sleepwear", 2)

	switch kind {
	case WeatherHot, WeatherWarm:
		l.add("Sun Hat", 1)
		l.add("Sunglasses", 1)
	case WeatherCool:
		l.add("Light Jacket", 1)
		l.add("Long Pants", bottomsQty)
	case WeatherCold, WeatherSnowy:
		l.add("Winter Coat", 1)
		l.add("Sweaters", min(3, days))
		l.add("Thermal Underwear", 2)
		l.add("Gloves", 1)
		l.add("Winter Hat", 1)
		l.add("Scarf", 1)
		l.add("Winter Boots", 1)
	case WeatherModerate, WeatherRainy, WeatherVariable:
		l.add("Light Jacket", 1)
	}
	return l.category(CategoryClothing)
}

func weatherEssentials(kind WeatherKind) Category {
	var l itemList
	switch kind {
	case WeatherRainy:
		l.add("Umbrella", 1)
		l.add("Rain Jacket", 1)
		l.add("Waterproof Shoes", 1)
	case WeatherHot, WeatherWarm:
		l.add("Sunscreen SPF 50+", 1)
		l.add("Lip Balm with SPF", 1)
	case WeatherCold, WeatherSnowy:
		l.add("Hand Warmers", 1)
		l.add("Insulated Water Bottle", 1)
	case WeatherModerate, WeatherCool, WeatherVariable:
	}
	return l.category(CategoryWeatherEssentials)
}

func toiletries(occasion Occasion, kind WeatherKind) Category {
	var l itemList
	l.add("Toothbrush", 1)
	l.add("Toothpaste", 1)
	l.add("Deodorant", 1)
	l.add("Shampoo", 1)
	l.add("Body Wash", 1)
	l.add("Hairbrush/Comb", 1)
	if kind == WeatherHot || kind == WeatherWarm {
		l.add("After-Sun Lotion", 1)
		l.add("Sunscreen (Travel Size)", 1)
	}
	if occasion == OccasionRomantic || occasion == OccasionWedding {
		l.add("Perfume/Cologne", 1)
		l.add("Grooming Kit", 1)
		l.add("Makeup/Styling Products", 1)
	}
	return l.category(CategoryToiletries)
}

func activityGear(activities []Activity) Category {
	selected := make(map[Activity]bool, len(activities))
	for _, a := range activities {
		selected[a] = true
	}

	var l itemList
	for _, activity := range activityOrder {
		if !selected[activity] {
			continue
		}
		switch activity {
		case ActivityBeach, ActivitySwimming:
			l.add("Swimsuit", 2)
			l.add("Beach Towel", 1)
			l.add("Sandals/Flip-flops", 1)
			l.add("Waterproof Phone Case", 1)
		case ActivityHiking:
			l.add("Hiking Boots", 1)
			l.add("Daypack", 1)
			l.add("Water Bottle", 1)
			l.add("Trail Snacks", 1)
			l.add("First Aid Kit", 1)
		case ActivitySkiing:
			l.add("Ski Jacket", 1)
			l.add("Thermal Base Layers", 2)
			l.add("Ski Goggles", 1)
			l.add("Ski Gloves", 1)
			l.add("Ski Socks", 3)
			l.add("Helmet", 1)
		case ActivitySports:
			l.add("Athletic Wear", 2)
			l.add("Athletic Shoes", 1)
			l.add("Sports Bag", 1)
			l.add("Sports Towel", 1)
		case ActivityPhotography:
			l.add("Camera", 1)
			l.add("Extra Batteries", 2)
			l.add("Memory Cards", 2)
			l.add("Tripod", 1)
		}
	}
	return l.category(CategoryActivities)
}
