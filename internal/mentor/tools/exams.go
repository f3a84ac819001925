package tools

import "strings"

// InstitutionKind buckets colleges by the admission system they belong to.
type InstitutionKind string

const (
	KindIIT     InstitutionKind = "IIT"
	KindNIT     InstitutionKind = "NIT"
	KindIIIT    InstitutionKind = "IIIT"
	KindGFTI    InstitutionKind = "GFTI"
	KindBITS    InstitutionKind = "BITS"
	KindState   InstitutionKind = "State"
	KindPrivate InstitutionKind = "Private"
	KindMedical InstitutionKind = "Medical"
)

// Exam maps an entrance exam to the only institution categories it admits
// to. The table is static; crossing it is always wrong, regardless of what
// a model asks for.
type Exam struct {
	Name    string
	Level   string // national, state, private, medical
	State   string // set for state-level exams
	Accepts []InstitutionKind
	Info    string
}

var exams = []Exam{
	{
		Name:    "JEE Advanced",
		Level:   "national",
		Accepts: []InstitutionKind{KindIIT},
		Info:    "JEE Advanced is the gateway to the IITs only.",
	},
	{
		Name:    "JEE Main",
		Level:   "national",
		Accepts: []InstitutionKind{KindNIT, KindIIIT, KindGFTI},
		Info:    "JEE Main admits to NITs, IIITs and GFTIs, not IITs or BITS.",
	},
	{
		Name:    "BITSAT",
		Level:   "private",
		Accepts: []InstitutionKind{KindBITS},
		Info:    "BITSAT admits to BITS campuses only.",
	},
	{
		Name:    "TS EAMCET",
		Level:   "state",
		State:   "Telangana",
		Accepts: []InstitutionKind{KindState, KindPrivate},
		Info:    "TS EAMCET admits to Telangana state colleges only.",
	},
	{
		Name:    "AP EAMCET",
		Level:   "state",
		State:   "Andhra Pradesh",
		Accepts: []InstitutionKind{KindState, KindPrivate},
		Info:    "AP EAMCET admits to Andhra Pradesh state colleges only.",
	},
	{
		Name:    "KCET",
		Level:   "state",
		State:   "Karnataka",
		Accepts: []InstitutionKind{KindState, KindPrivate},
		Info:    "KCET admits to Karnataka colleges only.",
	},
	{
		Name:    "MHT CET",
		Level:   "state",
		State:   "Maharashtra",
		Accepts: []InstitutionKind{KindState, KindPrivate},
		Info:    "MHT CET admits to Maharashtra colleges only.",
	},
	{
		Name:    "WBJEE",
		Level:   "state",
		State:   "West Bengal",
		Accepts: []InstitutionKind{KindState, KindPrivate},
		Info:    "WBJEE admits to West Bengal colleges only.",
	},
	{
		Name:    "NEET",
		Level:   "medical",
		Accepts: []InstitutionKind{KindMedical},
		Info:    "NEET admits to medical colleges only, never engineering.",
	},
}

// ResolveExam matches a free-form exam string against the known exams,
// case-insensitively and ignoring surrounding noise.
func ResolveExam(s string) (Exam, bool) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	if needle == "" {
		return Exam{}, false
	}
	for _, e := range exams {
		if strings.ToUpper(e.Name) == needle {
			return e, true
		}
	}
	// Tolerate common shorthand: "EAMCET" alone resolves to the TS variant,
	// "JEE" alone resolves to JEE Main.
	switch needle {
	case "EAMCET":
		return ResolveExam("TS EAMCET")
	case "JEE":
		return ResolveExam("JEE Main")
	}
	return Exam{}, false
}

// ValidExamNames lists every recognized exam identifier.
func ValidExamNames() []string {
	names := make([]string, len(exams))
	for i, e := range exams {
		names[i] = e.Name
	}
	return names
}

// AcceptsCollege reports whether a college can admit through this exam.
// State exams additionally require the college to be in the exam's state.
func (e Exam) AcceptsCollege(c *College) bool {
	kindOK := false
	for _, k := range e.Accepts {
		if c.Kind == k {
			kindOK = true
			break
		}
	}
	if !kindOK {
		return false
	}
	if e.Level == "state" && c.State != e.State {
		return false
	}
	return true
}

// RequiredExam returns the exam a college actually admits through.
func RequiredExam(c *College) string {
	switch c.Kind {
	case KindIIT:
		return "JEE Advanced"
	case KindNIT, KindIIIT, KindGFTI:
		return "JEE Main"
	case KindBITS:
		return "BITSAT"
	case KindMedical:
		return "NEET"
	}
	switch c.State {
	case "Telangana":
		return "TS EAMCET"
	case "Andhra Pradesh":
		return "AP EAMCET"
	case "Karnataka":
		return "KCET"
	case "Maharashtra":
		return "MHT CET"
	case "West Bengal":
		return "WBJEE"
	}
	return "JEE Main"
}
