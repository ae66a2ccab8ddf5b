package knack

// Object keys and field numbers of the legacy application. These are the
// external schema contract; everything else in the codebase works with the
// extracted, typed values.

const (
	ObjectAccounts       = "object_3"  // user accounts
	ObjectStudents       = "object_6"  // student records with connection fields
	ObjectVespaResults   = "object_10" // per-student VESPA score record
	ObjectQuestionnaires = "object_29" // per-question questionnaire responses
	ObjectActivityAnswer = "object_46" // historical activity responses
	ObjectCycleDates     = "object_66" // per-establishment cycle date windows
)

// Account fields (object_3).
const (
	FieldAccountEmail         = "field_70"
	FieldAccountName          = "field_69"
	FieldAccountProfiles      = "field_73"
	FieldAccountEstablishment = "field_122"
	FieldAccountPortalType    = "field_441"
	FieldAccountYearGroup     = "field_550"
	FieldAccountDepartment    = "field_551"
	FieldAccountGroup         = "field_708"
	FieldAccountSubjectCode   = "field_2178"
	FieldAccountTeachingGroup = "field_129"
	FieldAccountLanguage      = "field_2251"
	FieldAccountSISID         = "field_3129"
)

// Student fields (object_6).
const (
	FieldStudentEmail         = "field_91"
	FieldStudentEstablishment = "field_179"
	FieldStudentStaffAdmins   = "field_190"
	FieldStudentTutors        = "field_1682"
	FieldStudentHeadsOfYear   = "field_547"
	FieldStudentTeachers      = "field_2177"
	FieldStudentPrescribed    = "field_1683"
	FieldStudentFinished      = "field_1380"
	FieldStudentSelfAdded     = "field_3580"
	FieldStudentStaffAdded    = "field_3581"
	FieldStudentCompletedOne  = "field_2335"
	FieldStudentNotifications = "field_1810"
)

// VESPA result fields (object_10).
const (
	FieldResultEmail          = "field_197"
	FieldResultCustomer       = "field_133"
	FieldResultCycleUnlocked  = "field_1679"
	FieldResultCurrentCycle   = "field_146"
	FieldResultCompletionDate = "field_855"
	FieldResultCycle1Vision   = "field_155"
	FieldResultCycle2Vision   = "field_161"
	FieldResultCycle3Vision   = "field_167"
)

// Questionnaire response record fields (object_29).
const (
	FieldQuestionnaireResult = "field_792"
	FieldQuestionnaireCycle  = "field_863"
)

// Historical activity response fields (object_46).
const (
	FieldAnswerStudent        = "field_1301"
	FieldAnswerActivity       = "field_1302"
	FieldAnswerJSON           = "field_1300"
	FieldAnswerText           = "field_2334"
	FieldAnswerCompletionDate = "field_1870"
	FieldAnswerStaffFeedback  = "field_1734"
	FieldAnswerYearGroup      = "field_2331"
	FieldAnswerStudentGroup   = "field_2332"
	FieldAnswerTutor          = "field_1872"
	FieldAnswerStaffAdmin     = "field_1873"
)

// Cycle date window fields (object_66).
const (
	FieldCycleCustomer  = "field_1585"
	FieldCycleNumber    = "field_1579"
	FieldCycleStartDate = "field_1678"
	FieldCycleEndDate   = "field_1580"
)

// ProfileToRole maps legacy profile identifiers to role names.
var ProfileToRole = map[string]string{
	"profile_6":  "Student",
	"profile_5":  "Staff Admin",
	"profile_7":  "Tutor",
	"profile_18": "Head of Year",
	"profile_78": "Subject Teacher",
}

// QuestionFields maps a question id to its legacy field numbers: the
// "current" field plus one historical field per cycle.
type QuestionFields struct {
	Current string
	Cycle1  string
	Cycle2  string
	Cycle3  string
}

func (f QuestionFields) ForCycle(cycle int) string {
	switch cycle {
	case 1:
		return f.Cycle1
	case 2:
		return f.Cycle2
	case 3:
		return f.Cycle3
	default:
		return ""
	}
}

var QuestionFieldMapping = map[string]QuestionFields{
	"q1":  {Current: "field_794", Cycle1: "field_1953", Cycle2: "field_1955", Cycle3: "field_1956"},
	"q2":  {Current: "field_795", Cycle1: "field_1954", Cycle2: "field_1957", Cycle3: "field_1958"},
	"q3":  {Current: "field_796", Cycle1: "field_1959", Cycle2: "field_1960", Cycle3: "field_1961"},
	"q4":  {Current: "field_797", Cycle1: "field_1962", Cycle2: "field_1963", Cycle3: "field_1964"},
	"q5":  {Current: "field_798", Cycle1: "field_1965", Cycle2: "field_1966", Cycle3: "field_1967"},
	"q6":  {Current: "field_799", Cycle1: "field_1968", Cycle2: "field_1969", Cycle3: "field_1970"},
	"q7":  {Current: "field_800", Cycle1: "field_1971", Cycle2: "field_1972", Cycle3: "field_1973"},
	"q8":  {Current: "field_801", Cycle1: "field_1974", Cycle2: "field_1975", Cycle3: "field_1976"},
	"q9":  {Current: "field_802", Cycle1: "field_1977", Cycle2: "field_1978", Cycle3: "field_1979"},
	"q10": {Current: "field_803", Cycle1: "field_1980", Cycle2: "field_1981", Cycle3: "field_1982"},
	"q11": {Current: "field_804", Cycle1: "field_1983", Cycle2: "field_1984", Cycle3: "field_1985"},
	"q12": {Current: "field_805", Cycle1: "field_1986", Cycle2: "field_1987", Cycle3: "field_1988"},
	"q13": {Current: "field_806", Cycle1: "field_1989", Cycle2: "field_1990", Cycle3: "field_1991"},
	"q14": {Current: "field_807", Cycle1: "field_1992", Cycle2: "field_1993", Cycle3: "field_1994"},
	"q15": {Current: "field_808", Cycle1: "field_1995", Cycle2: "field_1996", Cycle3: "field_1997"},
	"q16": {Current: "field_809", Cycle1: "field_1998", Cycle2: "field_1999", Cycle3: "field_2000"},
	"q17": {Current: "field_810", Cycle1: "field_2001", Cycle2: "field_2002", Cycle3: "field_2003"},
	"q18": {Current: "field_811", Cycle1: "field_2004", Cycle2: "field_2005", Cycle3: "field_2006"},
	"q19": {Current: "field_812", Cycle1: "field_2007", Cycle2: "field_2008", Cycle3: "field_2009"},
	"q20": {Current: "field_813", Cycle1: "field_2010", Cycle2: "field_2011", Cycle3: "field_2012"},
	"q21": {Current: "field_814", Cycle1: "field_2013", Cycle2: "field_2014", Cycle3: "field_2015"},
	"q22": {Current: "field_815", Cycle1: "field_2016", Cycle2: "field_2017", Cycle3: "field_2018"},
	"q23": {Current: "field_816", Cycle1: "field_2019", Cycle2: "field_2020", Cycle3: "field_2021"},
	"q24": {Current: "field_817", Cycle1: "field_2022", Cycle2: "field_2023", Cycle3: "field_2024"},
	"q25": {Current: "field_818", Cycle1: "field_2025", Cycle2: "field_2026", Cycle3: "field_2027"},
	"q26": {Current: "field_819", Cycle1: "field_2028", Cycle2: "field_2029", Cycle3: "field_2030"},
	"q27": {Current: "field_820", Cycle1: "field_2031", Cycle2: "field_2032", Cycle3: "field_2033"},
	"q28": {Current: "field_821", Cycle1: "field_2034", Cycle2: "field_2035", Cycle3: "field_2036"},
	"q29": {Current: "field_2317", Cycle1: "field_2927", Cycle2: "field_2928", Cycle3: "field_2929"},
	"q30": {Current: "field_1816", Cycle1: "field_2037", Cycle2: "field_2038", Cycle3: "field_2039"},
	"q31": {Current: "field_1817", Cycle1: "field_2040", Cycle2: "field_2041", Cycle3: "field_2042"},
	"q32": {Current: "field_1818", Cycle1: "field_2043", Cycle2: "field_2044", Cycle3: "field_2045"},
}

// ScoreFields maps the per-category aggregate score fields on object_10.
type ScoreFields struct {
	Vision   string
	Effort   string
	Systems  string
	Practice string
	Attitude string
	Overall  string
}

var CurrentScoreFields = ScoreFields{
	Vision:   "field_147",
	Effort:   "field_148",
	Systems:  "field_149",
	Practice: "field_150",
	Attitude: "field_151",
	Overall:  "field_152",
}

var CycleScoreFields = map[int]ScoreFields{
	1: {Vision: "field_155", Effort: "field_156", Systems: "field_157", Practice: "field_158", Attitude: "field_159", Overall: "field_160"},
	2: {Vision: "field_161", Effort: "field_162", Systems: "field_163", Practice: "field_164", Attitude: "field_165", Overall: "field_166"},
	3: {Vision: "field_167", Effort: "field_168", Systems: "field_169", Practice: "field_170", Attitude: "field_171", Overall: "field_172"},
}
