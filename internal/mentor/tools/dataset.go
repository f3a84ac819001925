package tools

import (
	"strings"

	"github.com/compass-mentor/server/internal/mentor/model"
)

// College is one row of the in-memory grounding dataset. The dataset is
// read-only after construction; every numeric claim in a reply must trace
// back to it.
type College struct {
	Name     string             `json:"name"`
	Acronym  string             `json:"acronym"`
	City     string             `json:"city"`
	State    string             `json:"state"`
	Stream   string             `json:"stream"`
	Kind     InstitutionKind    `json:"kind"`
	Type     string             `json:"type"`
	NIRFRank int                `json:"nirfRank"`
	Branches []string           `json:"branches"`
	Fees     model.FeeStructure `json:"fees"`
}

// Location renders "City, State" for display fields.
func (c *College) Location() string {
	return c.City + ", " + c.State
}

// Dataset wraps the college rows with lookup helpers.
type Dataset struct {
	colleges []*College
}

type seedRow struct {
	name  string
	city  string
	state string
	kind  InstitutionKind // zero value derives Private
}

var engineeringSeed = []seedRow{
	{name: "Indian Institute of Technology Madras", city: "Chennai", state: "Tamil Nadu"},
	{name: "Indian Institute of Technology Delhi", city: "New Delhi", state: "Delhi"},
	{name: "Indian Institute of Technology Bombay", city: "Mumbai", state: "Maharashtra"},
	{name: "Indian Institute of Technology Kanpur", city: "Kanpur", state: "Uttar Pradesh"},
	{name: "Indian Institute of Technology Kharagpur", city: "Kharagpur", state: "West Bengal"},
	{name: "Indian Institute of Technology Roorkee", city: "Roorkee", state: "Uttarakhand"},
	{name: "Indian Institute of Technology Guwahati", city: "Guwahati", state: "Assam"},
	{name: "National Institute of Technology Trichy", city: "Tiruchirappalli", state: "Tamil Nadu"},
	{name: "Indian Institute of Technology Hyderabad", city: "Hyderabad", state: "Telangana"},
	{name: "National Institute of Technology Karnataka", city: "Surathkal", state: "Karnataka"},
	{name: "Jadavpur University", city: "Kolkata", state: "West Bengal", kind: KindState},
	{name: "Vellore Institute of Technology", city: "Vellore", state: "Tamil Nadu"},
	{name: "Indian Institute of Technology BHU Varanasi", city: "Varanasi", state: "Uttar Pradesh"},
	{name: "Indian Institute of Technology ISM Dhanbad", city: "Dhanbad", state: "Jharkhand"},
	{name: "National Institute of Technology Rourkela", city: "Rourkela", state: "Odisha"},
	{name: "Indian Institute of Technology Indore", city: "Indore", state: "Madhya Pradesh"},
	{name: "Anna University", city: "Chennai", state: "Tamil Nadu", kind: KindState},
	{name: "Institute of Chemical Technology", city: "Mumbai", state: "Maharashtra", kind: KindState},
	{name: "Amrita Vishwa Vidyapeetham", city: "Coimbatore", state: "Tamil Nadu"},
	{name: "Indian Institute of Technology Mandi", city: "Mandi", state: "Himachal Pradesh"},
	{name: "National Institute of Technology Warangal", city: "Warangal", state: "Telangana"},
	{name: "Indian Institute of Technology Ropar", city: "Ropar", state: "Punjab"},
	{name: "Indian Institute of Technology Gandhinagar", city: "Gandhinagar", state: "Gujarat"},
	{name: "National Institute of Technology Calicut", city: "Kozhikode", state: "Kerala"},
	{name: "Thapar Institute of Engineering and Technology", city: "Patiala", state: "Punjab"},
	{name: "Birla Institute of Technology and Science Pilani", city: "Pilani", state: "Rajasthan"},
	{name: "Indian Institute of Technology Jodhpur", city: "Jodhpur", state: "Rajasthan"},
	{name: "National Institute of Technology Silchar", city: "Silchar", state: "Assam"},
	{name: "Visvesvaraya National Institute of Technology", city: "Nagpur", state: "Maharashtra"},
	{name: "Jamia Millia Islamia", city: "New Delhi", state: "Delhi", kind: KindGFTI},
	{name: "Delhi Technological University", city: "New Delhi", state: "Delhi", kind: KindState},
	{name: "Amity University", city: "Noida", state: "Uttar Pradesh"},
	{name: "Malaviya National Institute of Technology", city: "Jaipur", state: "Rajasthan"},
	{name: "Sri Sivasubramaniya Nadar College of Engineering", city: "Chennai", state: "Tamil Nadu"},
	{name: "Manipal Institute of Technology", city: "Manipal", state: "Karnataka"},
	{name: "National Institute of Technology Kurukshetra", city: "Kurukshetra", state: "Haryana"},
	{name: "Indian Institute of Technology Patna", city: "Patna", state: "Bihar"},
	{name: "Visvesvaraya Technological University", city: "Belagavi", state: "Karnataka", kind: KindState},
	{name: "International Institute of Information Technology Hyderabad", city: "Hyderabad", state: "Telangana"},
	{name: "Motilal Nehru National Institute of Technology", city: "Prayagraj", state: "Uttar Pradesh"},
	{name: "PSG College of Technology", city: "Coimbatore", state: "Tamil Nadu"},
	{name: "National Institute of Technology Durgapur", city: "Durgapur", state: "West Bengal"},
	{name: "Lovely Professional University", city: "Phagwara", state: "Punjab"},
	{name: "University College of Engineering Osmania University", city: "Hyderabad", state: "Telangana", kind: KindState},
	{name: "MS Ramaiah Institute of Technology", city: "Bangalore", state: "Karnataka"},
	{name: "RV College of Engineering", city: "Bangalore", state: "Karnataka"},
	{name: "BMS College of Engineering", city: "Bangalore", state: "Karnataka"},
	{name: "Sardar Vallabhbhai National Institute of Technology", city: "Surat", state: "Gujarat"},
	{name: "Jawaharlal Nehru Technological University Hyderabad", city: "Hyderabad", state: "Telangana", kind: KindState},
	{name: "Chaitanya Bharathi Institute of Technology", city: "Hyderabad", state: "Telangana"},
	{name: "Maulana Azad National Institute of Technology", city: "Bhopal", state: "Madhya Pradesh"},
}

var medicalSeed = []seedRow{
	{name: "All India Institute of Medical Sciences New Delhi", city: "New Delhi", state: "Delhi"},
	{name: "Post Graduate Institute of Medical Education and Research", city: "Chandigarh", state: "Chandigarh"},
	{name: "Christian Medical College Vellore", city: "Vellore", state: "Tamil Nadu"},
	{name: "Jawaharlal Institute of Postgraduate Medical Education and Research", city: "Puducherry", state: "Puducherry"},
	{name: "Madras Medical College", city: "Chennai", state: "Tamil Nadu"},
	{name: "King George's Medical University", city: "Lucknow", state: "Uttar Pradesh"},
	{name: "All India Institute of Medical Sciences Jodhpur", city: "Jodhpur", state: "Rajasthan"},
	{name: "Kasturba Medical College Manipal", city: "Manipal", state: "Karnataka"},
	{name: "Maulana Azad Medical College", city: "New Delhi", state: "Delhi"},
	{name: "St. John's Medical College", city: "Bangalore", state: "Karnataka"},
	{name: "Government Medical College Thiruvananthapuram", city: "Thiruvananthapuram", state: "Kerala"},
	{name: "Osmania Medical College", city: "Hyderabad", state: "Telangana"},
}

// NewDataset builds the seed data. Engineering and medical streams carry
// separate NIRF-style rank sequences.
func NewDataset() *Dataset {
	d := &Dataset{}
	for i, row := range engineeringSeed {
		d.colleges = append(d.colleges, buildCollege(row, i+1, "Engineering"))
	}
	for i, row := range medicalSeed {
		d.colleges = append(d.colleges, buildCollege(row, i+1, "Medical"))
	}
	return d
}

func buildCollege(row seedRow, rank int, stream string) *College {
	kind := row.kind
	if stream == "Medical" {
		kind = KindMedical
	} else if kind == "" {
		kind = classifyKind(row.name)
	}

	c := &College{
		Name:     row.name,
		Acronym:  acronymFor(row.name),
		City:     row.city,
		State:    row.state,
		Stream:   stream,
		Kind:     kind,
		Type:     typeFor(kind, row.name),
		NIRFRank: rank,
		Branches: branchesFor(stream),
	}
	c.Fees = feesFor(stream, c.Type == "Government")
	return c
}

func classifyKind(name string) InstitutionKind {
	switch {
	case strings.Contains(name, "Indian Institute of Technology"):
		return KindIIT
	case strings.Contains(name, "National Institute of Technology"):
		return KindNIT
	case strings.Contains(name, "International Institute of Information Technology"):
		return KindIIIT
	case strings.Contains(name, "Birla Institute of Technology and Science"):
		return KindBITS
	default:
		return KindPrivate
	}
}

func typeFor(kind InstitutionKind, name string) string {
	switch kind {
	case KindIIT, KindNIT, KindIIIT, KindGFTI, KindState:
		return "Government"
	case KindBITS:
		return "Deemed"
	case KindMedical:
		if strings.Contains(name, "All India Institute") || strings.Contains(name, "Government") ||
			strings.Contains(name, "Madras Medical") || strings.Contains(name, "Osmania") ||
			strings.Contains(name, "Maulana Azad") || strings.Contains(name, "King George") ||
			strings.Contains(name, "Postgraduate Medical") || strings.Contains(name, "Graduate Institute") {
			return "Government"
		}
		return "Private"
	default:
		return "Private"
	}
}

func branchesFor(stream string) []string {
	if stream == "Medical" {
		return []string{"MBBS", "BDS", "Nursing", "Pharmacy"}
	}
	return []string{"CSE", "IT", "ECE", "EEE", "MECH", "CIVIL"}
}

func feesFor(stream string, government bool) model.FeeStructure {
	general := 400000
	if stream == "Medical" {
		general = 1500000
		if government {
			general = 50000
		}
	} else if government {
		general = 150000
	}
	return model.FeeStructure{
		General: general,
		OBC:     general * 7 / 10,
		SC:      general * 3 / 10,
		ST:      general * 3 / 10,
	}
}

func acronymFor(name string) string {
	words := strings.Fields(name)
	last := words[len(words)-1]
	short := strings.ToUpper(last)
	if len(short) > 3 {
		short = short[:3]
	}
	switch {
	case strings.Contains(name, "Indian Institute of Technology"):
		return "IIT-" + short
	case strings.Contains(name, "National Institute of Technology"):
		return "NIT-" + short
	case strings.Contains(name, "All India Institute of Medical Sciences"):
		return "AIIMS-" + short
	}
	var b strings.Builder
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		switch strings.ToLower(w) {
		case "of", "and", "the", "for":
			continue
		}
		b.WriteByte(w[0])
	}
	acronym := strings.ToUpper(b.String())
	if len(acronym) > 6 {
		acronym = acronym[:6]
	}
	return acronym
}

// All returns every college.
func (d *Dataset) All() []*College {
	return d.colleges
}

// Find matches a college by name or acronym, case-insensitively. Partial
// names match when either string contains the other.
func (d *Dataset) Find(name string) (*College, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}
	for _, c := range d.colleges {
		if strings.ToLower(c.Name) == needle || strings.ToLower(c.Acronym) == needle {
			return c, true
		}
	}
	for _, c := range d.colleges {
		lower := strings.ToLower(c.Name)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return c, true
		}
	}
	return nil, false
}

// EligibleFor returns the colleges this exam admits to, optionally
// filtered by city.
func (d *Dataset) EligibleFor(exam Exam, city string) []*College {
	city = strings.ToLower(strings.TrimSpace(city))
	var out []*College
	for _, c := range d.colleges {
		if !exam.AcceptsCollege(c) {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(c.City), city) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Branch difficulty and category relaxation factors, in percent, used by
// the deterministic cutoff model.
var branchFactor = map[string]int{
	"CSE": 100, "IT": 130, "ECE": 180, "EEE": 260,
	"MECH": 350, "CIVIL": 450,
	"MBBS": 100, "BDS": 300, "Nursing": 600, "Pharmacy": 800,
}

var categoryFactor = map[string]int{
	"General": 100, "EWS": 110, "OBC": 140, "SC": 250, "ST": 300, "PwD": 350,
}

var kindBase = map[InstitutionKind]int{
	KindIIT: 150, KindNIT: 800, KindIIIT: 1000, KindGFTI: 1200,
	KindBITS: 600, KindState: 400, KindPrivate: 900, KindMedical: 120,
}

// CutoffYear is the admission year the synthetic cutoffs model.
const CutoffYear = 2025

// ClosingRank computes the deterministic closing rank for a college,
// branch and category. Better-ranked institutions and tougher branches
// close earlier; reserved categories close later.
func ClosingRank(c *College, branch, category string) int {
	base := kindBase[c.Kind]
	if base == 0 {
		base = 900
	}
	bf, ok := branchFactor[branch]
	if !ok {
		bf = 200
	}
	cf, ok := categoryFactor[category]
	if !ok {
		cf = 100
	}
	return base * c.NIRFRank * bf / 100 * cf / 100
}

// NormalizeCategory maps free-form category strings onto the reservation
// categories the cutoff table knows. Unknown values fall back to General.
func NormalizeCategory(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OBC", "OBC-NCL":
		return "OBC"
	case "SC":
		return "SC"
	case "ST":
		return "ST"
	case "EWS":
		return "EWS"
	case "PWD", "PWD-GENERAL":
		return "PwD"
	default:
		return "General"
	}
}
