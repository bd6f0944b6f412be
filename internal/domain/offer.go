package domain

// Curriculum is a course track a student can enroll in.
type Curriculum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// School is a partner institution participating in the student program.
type School struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Domain    string       `json:"domain"`
	Curricula []Curriculum `json:"curricula"`
}

// CuratedOffer is a bundled product offer students can claim for free.
// Each offer maps to exactly one curriculum.
type CuratedOffer struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Badge       string `json:"badge"`
	Description string `json:"description"`
	Curriculum  Curriculum
}

// Schools lists the partner institutions. The "other" entry is a catch-all
// for students whose school has not joined the program.
var Schools = []School{
	{
		ID:     "asu",
		Name:   "Arizona State University (ASU)",
		Domain: "asu.edu",
		Curricula: []Curriculum{
			{ID: "web101", Name: "Web Dev 101 (HTML/CSS/JS)"},
			{ID: "ecom", Name: "E-Commerce Fundamentals"},
			{ID: "entre", Name: "Entrepreneurship for Creators"},
		},
	},
	{
		ID:     "uofa",
		Name:   "University of Arizona (UArizona)",
		Domain: "arizona.edu",
		Curricula: []Curriculum{
			{ID: "wpbuilder", Name: "WordPress Builder Lab"},
			{ID: "marketing", Name: "Digital Marketing Basics"},
		},
	},
	{
		ID:     "nau",
		Name:   "Northern Arizona University (NAU)",
		Domain: "nau.edu",
		Curricula: []Curriculum{
			{ID: "cloud", Name: "Cloud Hosting Essentials"},
			{ID: "design", Name: "No-Code Site Design Studio"},
		},
	},
	{
		ID:        "other",
		Name:      "My school isn't listed",
		Domain:    "",
		Curricula: []Curriculum{{ID: "general", Name: "General Track"}},
	},
}

// CuratedOffers lists the bundles available to signed-in students.
var CuratedOffers = []CuratedOffer{
	{
		ID:          "hackathonGoStudentsWebDesign-webHostingEconomy-conversationsEssential",
		Title:       "Curriculum 1 — Web Design",
		Subtitle:    "Web Hosting Economy, Conversations Essentials",
		Badge:       "6-month Free Trial",
		Description: "Complete web design toolkit for students learning web development",
		Curriculum:  Curriculum{ID: "web101", Name: "Web Design"},
	},
	{
		ID:          "hackathonGoStudentsWebsiteSecurity-mwpBasic-nortonSmallBusinessStandard",
		Title:       "Curriculum 2 — Website Security",
		Subtitle:    "MWP Basic, Norton",
		Badge:       "6-month Free Trial",
		Description: "Essential security tools for protecting websites and business data",
		Curriculum:  Curriculum{ID: "security", Name: "Website Security"},
	},
	{
		ID:          "hackathonGoStudentsBusineesAi-wamCommerce-airoAllAccess",
		Title:       "Curriculum 3 — Building Businesses with AI",
		Subtitle:    "WAM Commerce, Airo Plus",
		Badge:       "6-month Free Trial",
		Description: "AI-powered business tools for modern entrepreneurship",
		Curriculum:  Curriculum{ID: "ai-business", Name: "Building Businesses with AI"},
	},
}

// SchoolByID looks up a partner school by its identifier.
func SchoolByID(id string) (School, bool) {
	for _, s := range Schools {
		if s.ID == id {
			return s, true
		}
	}
	return School{}, false
}

// OfferByID looks up a curated offer by its identifier.
func OfferByID(id string) (CuratedOffer, bool) {
	for _, o := range CuratedOffers {
		if o.ID == id {
			return o, true
		}
	}
	return CuratedOffer{}, false
}
