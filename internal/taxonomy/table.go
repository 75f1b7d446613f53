package taxonomy

// Default returns the built-in table of Italian storefront labels collected
// from the source site. The pipeline injects it explicitly so tests can
// substitute a smaller table.
func Default() Table {
	return Table{
		"Beverages": {
			"Alcoholic Beverages": {
				"Alcoliche", "Alcolici", "Aperitivi alcolici", "Birra in bottiglia",
				"Birra in lattina", "Birre", "Birre analcoliche", "Gin", "Limoncello",
				"Liquori", "Prosecco", "Prosecco e spumante", "Rhum", "Tequila",
				"Vini bianchi", "Vini rossi", "Vini rosati e frizzanti", "Vino bianco",
				"Vino rosato", "Vino rosso", "Vodka", "Whiskey", "Superalcolici",
			},
			"Non-Alcoholic Beverages": {
				"100% succo", "Analcoliche", "Analcolici", "Acqua frizzante",
				"Acqua naturale", "Acqua tonica", "Acque aromatizzate",
				"Bevande a base di latte", "Bevande vegetali", "Coca-Cola", "Cola",
				"Energy drink", "Succo di limone", "Succhi", "Succhi multipack",
				"The", "Tè e caffè", "Tè freddo", "Tè, tisane e camomille",
				"Sostituti del latte",
			},
			"Specialty Beverages": {
				"Caffè in capsule A Modo Mio", "Caffè in capsule Dolce Gusto",
				"Caffè in capsule Nespresso", "Caffè in cialde",
				"Caffè in grani e macinato", "Caffè macinato", "Caffè solubile",
				"Orzo e sostitutivi caffè",
			},
		},
		"Food": {
			"Dairy Products": {
				"Burro", "Latte intero", "Latte kefir",
				"Latte scremato e parzialmente scremato", "Latte uht intero",
				"Latticini e albumi", "Panna fresca", "Panna uht", "Ricotta",
				"Ricotta e mascarpone", "Mascarpone", "Yogurt da bere",
				"Yogurt intero - bianco", "Yogurt intero - frutta",
				"Yogurt magro - bianco", "Yogurt magro - frutta",
			},
			"Meat & Seafood": {
				"Affettati di pollo e tacchino", "Bresaola", "Carne in scatola",
				"Carne macinata", "Mortadella", "Prosciutto cotto", "Prosciutto crudo",
				"Salame", "Salumi e formaggi", "Tonno al naturale", "Tonno sott’olio",
				"Pollo", "Tacchino", "Suino", "Specialità ittiche",
			},
			"Bakery & Bread": {
				"Biscotti frollini", "Biscotti ripieni", "Biscotti secchi",
				"Biscotti senza glutine", "Cornetti e croissant", "Fette biscottate",
				"Pane bauletto", "Pane confezionato e a fette", "Pane croccante",
				"Pane fresco", "Pane grattugiato", "Panini", "Panettone", "Pandoro",
				"Piadine", "Tramezzini/Toast",
			},
			"Pasta & Rice": {
				"Pasta Fresca", "Pasta all'uovo", "Pasta di semola corta",
				"Pasta di semola lunga", "Pasta di semola specialità",
				"Pasta fresca non ripiena", "Pasta fresca ripiena",
				"Pasta integrale, farro e altri", "Pasta ripiena e gnocchi",
				"Riso bianco", "Riso parboiled", "Riso specialità", "Risotto",
			},
			"Condiments & Sauces": {
				"Condimenti", "Ketchup e barbeque", "Maionese",
				"Salse lunga conservazione", "Sughi", "Sughi freschi", "Sughi pronti",
				"Passata di pomodoro", "Polpa di pomodoro", "Concentrato di pomodoro",
			},
			"Snacks": {
				"Barrette dolci", "Crackers", "Gallette", "Merendine",
				"Snack cioccolato", "Snack dolci", "Snack salati", "Pop corn",
				"Taralli", "Tavolette di cioccolato", "Wafer",
			},
			"Frozen Foods": {
				"Carne al naturale surgelata", "Pizza condita surgelata",
				"Pizza margherita surgelata", "Pesce al naturale surgelato",
				"Minestroni e vellutate surgelate", "Patatine surgelate",
				"Surgelati", "Surgelati e gelati", "Pizze e focacce", "Sorbetti",
				"Stecchi gelato", "Torte gelato",
			},
			"Fresh Produce": {
				"Altra frutta fresca", "Altra verdura fresca", "Carote", "Mele",
				"Pere", "Sedano", "Zucchine, melanzane e peperoni", "Funghi",
				"Fragole e frutti di bosco", "Frutta esotica",
				"Frutta secca con guscio", "Frutta secca senza guscio",
				"Piante aromatiche",
			},
		},
		"Personal Care": {
			"Hair Care": {
				"Accessori capelli", "Balsamo capelli", "Colorazione capelli",
				"Shampoo", "Shampoo e balsamo", "Maschere e trattamento capelli",
				"Styling capelli",
			},
			"Skin & Body Care": {
				"Bagno doccia schiuma", "Bagno/Doccia", "Creme corpo e talco",
				"Creme e gel mani", "Cura viso e creme", "Corpo", "Cosmetica viso",
			},
			"Oral Care": {
				"Accessori pulizia denti", "Dentifrici", "Spazzolini",
			},
			"Deodorants & Antiperspirants": {
				"Deodorante roll-on", "Deodorante spray", "Deodoranti",
				"Deodoranti roll-on", "Deodoranti spray",
			},
		},
		"Household Products": {
			"Cleaning Supplies": {
				"Additivi lavastoviglie", "Candeggina", "Detergenti multiuso",
				"Detergenti per pavimenti", "Detergenti superfici",
				"Insetticidi volanti", "Lavastoviglie", "Lavastoviglie in caps",
				"Lavatrice", "Anticalcare", "Igienizzanti, sgrassatori e anticalcare",
			},
			"Laundry Supplies": {
				"Ammorbidenti", "Ammorbidenti e profumatori",
				"Detersivi lavatrice liquidi e in caps", "Saponi bucato",
			},
			"Paper Products": {
				"Carta igienica", "Rotoli di carta", "Tovaglioli", "Fazzoletti",
				"Panni e spugne",
			},
			"Kitchen Supplies": {
				"Alluminio, pellicola e carta forno", "Sacchetti e vaschette per alimenti",
				"Sacchetti per la spazzatura", "Utensileria cucina",
				"Pentole, padelle e teglie", "Piatti, bicchieri e posate",
			},
		},
		"Pet Supplies": {
			"Dog Supplies": {
				"Cibo secco e crocchette cane", "Cibo umido cane",
				"Snack e biscotti cane", "Igiene e accessori cane",
			},
			"Cat Supplies": {
				"Cibo secco e crocchette gatto", "Cibo umido gatto", "Snack gatto",
				"Igiene e accessori gatto",
			},
			"Other Pets": {
				"Cibo altri animali",
			},
		},
		"Health & Wellness": {
			"Medical Supplies": {
				"Articoli sanitari", "Pronto soccorso",
			},
			"Personal Health": {
				"Incontinenza", "Integratori alimentari", "Integratori e vitamine",
				"Assorbenti esterni", "Assorbenti interni", "Protezioni solari",
			},
		},
		"Specialty & Gourmet": {
			"Gourmet Items": {
				"Grana", "Grappa", "Marmellate", "Miele",
				"Olio extravergine d'oliva", "Olio d’oliva", "Olive",
				"Olive e frutta secca",
			},
			"Specialty Foods": {
				"Altra pasta speciale", "Altre conserve di pesce",
				"Altre specialità di riso", "Specialità vegetali",
			},
		},
		"Miscellaneous": {
			"Cooking Essentials": {
				"Farina", "Farine e altre miscele", "Semi", "Lieviti",
				"Olio d'oliva", "Olio di semi",
			},
			"Specialty Ingredients": {
				"Aromi e spezie", "Aromi", "Spezie ed aromi",
			},
		},
	}
}
