package filter

import "github.com/maegy2011/orchids-tube-sub000/internal/model"

// DefaultCategories is the seeded category list in its declared order.
// The order matters: category inference scans it top to bottom and ties
// break in favor of the earlier category.
var DefaultCategories = []model.CategoryDefinition{
	{ID: "education", Label: "تعليم", Enabled: true},
	{ID: "programming", Label: "برمجة", Enabled: true},
	{ID: "science", Label: "علوم", Enabled: true},
	{ID: "islamic", Label: "إسلاميات", Enabled: true},
	{ID: "cartoon", Label: "كرتون", Enabled: true},
	{ID: "sports", Label: "رياضة", Enabled: true},
	{ID: "cooking", Label: "طبخ", Enabled: true},
	{ID: "nature", Label: "طبيعة", Enabled: true},
}

// categoryTerms is the term dictionary per category, used both for policy
// category inference and for query diversification. Terms are bilingual
// and matched as case-insensitive substrings.
var categoryTerms = map[string][]string{
	"education": {
		"تعليم", "تعلم", "مدرسة", "شرح", "مراجعة", "منهج",
		"education", "learning", "school", "lesson", "study",
	},
	"programming": {
		"برمجة", "كود", "مطور", "تطبيقات", "خوارزميات",
		"programming", "coding", "developer", "software", "python", "javascript",
	},
	"science": {
		"علوم", "فيزياء", "كيمياء", "فضاء", "تجارب",
		"science", "physics", "chemistry", "space", "experiment",
	},
	"islamic": {
		"قرآن", "تلاوة", "أذكار", "سيرة", "أنبياء",
		"quran", "islamic", "dua",
	},
	"cartoon": {
		"كرتون", "رسوم متحركة", "أطفال", "قصص",
		"cartoon", "animation", "kids",
	},
	"sports": {
		"رياضة", "كرة القدم", "تمارين", "سباحة",
		"sports", "football", "workout", "swimming",
	},
	"cooking": {
		"طبخ", "وصفات", "حلويات", "مطبخ",
		"cooking", "recipe", "baking",
	},
	"nature": {
		"طبيعة", "حيوانات", "وثائقي", "بحار",
		"nature", "animals", "documentary", "wildlife",
	},
}

// TermsFor returns the dictionary for a category id, nil when unknown.
func TermsFor(categoryID string) []string {
	return categoryTerms[categoryID]
}
