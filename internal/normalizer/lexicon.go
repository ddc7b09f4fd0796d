package normalizer

// defaultStopwords are prepositions, conjunctions and filler words of the
// catalog's language that carry no search signal.
var defaultStopwords = []string{
	"из", "в", "на", "по", "с", "к", "для", "и", "или", "а", "но", "за",
	"о", "об", "от", "до", "у", "без", "через", "при", "про", "между", "среди",
	"то", "же", "как", "что", "это", "который", "весь", "свой", "чтобы",
	"быть", "мочь", "такой", "этот", "сам", "так", "вот", "только", "уже",
	"еще", "когда", "где", "почему",
}

// defaultSynonyms maps a folded token to extra forms searched alongside it.
// Multi-word forms are matched as phrases.
var defaultSynonyms = map[string][]string{
	"гкл":         {"гипсокартон"},
	"гипсокартон": {"гкл"},
	"м2":          {"квадратный метр", "кв метр", "кв м"},
	"квадратный":  {"м2", "кв"},
	"м3":          {"кубический метр", "куб метр", "куб м"},
	"кубический":  {"м3", "куб"},
	"пм":          {"погонный метр", "пог метр"},
	"погонный":    {"пм", "пог"},
}
