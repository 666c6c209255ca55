package knowledge

// Built-in production dictionaries. Tokens are lowercase; multi-word terms
// are matched as substrings of the normalized query.

var defaultStopWords = []string{
	"a", "an", "the",
	"i", "me", "my", "mine", "you", "your", "we", "our", "us",
	"it", "its", "this", "that", "these", "those",
	"is", "am", "are", "was", "were", "be", "been",
	"do", "does", "did", "can", "could", "would", "should",
	"want", "need", "find", "looking", "searching", "get",
	"for", "to", "of", "in", "on", "at", "with", "and", "or",
	"some", "any", "please",
}

var defaultTypos = map[string]string{
	"lapotp":    "laptop",
	"laptp":     "laptop",
	"wirless":   "wireless",
	"wireles":   "wireless",
	"camra":     "camera",
	"camara":    "camera",
	"bluetoth":  "bluetooth",
	"blutooth":  "bluetooth",
	"headphons": "headphones",
	"headfones": "headphones",
	"phoen":     "phone",
	"phne":      "phone",
	"keybord":   "keyboard",
	"keyborad":  "keyboard",
	"moniter":   "monitor",
	"speakr":    "speaker",
	"chargr":    "charger",
	"waterbotle": "water bottle",
	"sustainble": "sustainable",
	"sustanable": "sustainable",
	"ecofriendly": "eco-friendly",
	"recycld":   "recycled",
}

var defaultSynonyms = map[string][]string{
	"dash cam":      {"dashboard camera", "car camera", "driving recorder"},
	"smart watch":   {"smartwatch", "fitness tracker", "wearable"},
	"smartwatch":    {"smart watch", "fitness tracker", "wearable"},
	"laptop":        {"notebook", "ultrabook", "computer"},
	"phone":         {"smartphone", "mobile phone", "handset"},
	"headphones":    {"earbuds", "earphones", "headset"},
	"tv":            {"television", "smart tv", "display"},
	"speaker":       {"bluetooth speaker", "sound system"},
	"keyboard":      {"mechanical keyboard", "wireless keyboard"},
	"monitor":       {"display", "screen"},
	"charger":       {"charging cable", "power adapter"},
	"backpack":      {"rucksack", "daypack", "bag"},
	"water bottle":  {"flask", "thermos", "hydration bottle"},
	"yoga mat":      {"exercise mat", "fitness mat"},
	"coffee maker":  {"coffee machine", "espresso machine", "brewer"},
	"blender":       {"food processor", "smoothie maker"},
	"desk":          {"standing desk", "workstation"},
	"chair":         {"office chair", "ergonomic chair"},
	"lamp":          {"desk lamp", "light"},
	"shoes":         {"sneakers", "trainers", "footwear"},
	"jacket":        {"coat", "windbreaker"},
	"sustainable":   {"eco-friendly", "green", "recycled"},
	"eco-friendly":  {"sustainable", "green", "recycled"},
	"organic":       {"natural", "chemical-free"},
}

var defaultCategories = []Category{
	{
		Name:       "electronics",
		Keywords:   []string{"laptop", "phone", "headphones", "speaker", "tv", "monitor", "keyboard", "charger", "tablet", "camera", "smart watch", "smartwatch", "electronic"},
		BoostTerms: []string{"electronics", "gadget", "device"},
		Related:    []string{"automotive", "office"},
		Popularity: 0.9,
	},
	{
		Name:       "automotive",
		Keywords:   []string{"car", "dash cam", "dashboard camera", "vehicle", "tire", "motor", "driving"},
		BoostTerms: []string{"automotive", "car accessory", "vehicle"},
		Related:    []string{"electronics"},
		Popularity: 0.6,
	},
	{
		Name:       "home & kitchen",
		Keywords:   []string{"kitchen", "coffee maker", "blender", "cookware", "lamp", "furniture", "home decor", "vacuum"},
		BoostTerms: []string{"home", "kitchen", "appliance"},
		Related:    []string{"garden"},
		Popularity: 0.8,
	},
	{
		Name:       "sports & outdoors",
		Keywords:   []string{"yoga mat", "gym", "fitness", "camping", "hiking", "bicycle", "water bottle", "outdoor"},
		BoostTerms: []string{"sports", "outdoor", "fitness"},
		Related:    []string{"clothing"},
		Popularity: 0.7,
	},
	{
		Name:       "clothing",
		Keywords:   []string{"shirt", "jacket", "shoes", "sneakers", "dress", "pants", "hoodie", "apparel"},
		BoostTerms: []string{"clothing", "apparel", "wear"},
		Related:    []string{"sports & outdoors"},
		Popularity: 0.75,
	},
	{
		Name:       "beauty & personal care",
		Keywords:   []string{"shampoo", "skincare", "lotion", "makeup", "soap", "toothbrush", "razor"},
		BoostTerms: []string{"beauty", "personal care"},
		Related:    []string{"home & kitchen"},
		Popularity: 0.65,
	},
	{
		Name:       "office",
		Keywords:   []string{"desk", "chair", "notebook", "pen", "printer", "stationery", "office"},
		BoostTerms: []string{"office", "workspace"},
		Related:    []string{"electronics"},
		Popularity: 0.55,
	},
	{
		Name:       "garden",
		Keywords:   []string{"plant", "garden", "seeds", "planter", "compost", "hose"},
		BoostTerms: []string{"garden", "outdoor living"},
		Related:    []string{"home & kitchen"},
		Popularity: 0.45,
	},
}

var defaultFeatures = []string{
	"wireless", "bluetooth", "waterproof", "rechargeable", "portable",
	"solar", "organic", "recycled", "biodegradable", "compostable",
	"energy efficient", "noise cancelling", "fast charging", "hd", "4k",
	"ergonomic", "foldable", "lightweight", "durable", "compact",
}

var defaultUseCases = map[string][]string{
	"commute":     {"commute", "commuting", "driving to work"},
	"travel":      {"travel", "trip", "vacation", "flight"},
	"gift":        {"gift", "present", "birthday", "anniversary"},
	"work":        {"work", "office use", "meetings", "remote work"},
	"gym":         {"gym", "workout", "training", "exercise"},
	"home office": {"home office", "desk setup", "wfh"},
	"outdoor":     {"camping", "hiking", "outdoor", "trail"},
}

var defaultUrgent = []string{
	"today", "now", "asap", "urgent", "immediately", "right away", "same day",
}

var defaultResearch = []string{
	"eventually", "someday", "researching", "learning about", "thinking about",
	"in the future", "comparing options",
}
