package scoring

// CriterionID identifies one rubric line item, e.g. "2_3".
type CriterionID string

type Criterion struct {
	ID    CriterionID `json:"id"`
	Point string      `json:"point"`
	Max   int         `json:"maxScore"`
}

type CriterionGroup struct {
	Category string      `json:"category"`
	Items    []Criterion `json:"items"`
}

// MaxTotal is the sum of every criterion maximum.
const MaxTotal = 100

// Rubric is fixed. Stored submissions are keyed by these ids, so changing the set
// requires migrating stored data.
var Rubric = []CriterionGroup{
	{
		Category: "1. Teaching design & content (30)",
		Items: []Criterion{
			{ID: "1_1", Point: "1.1 Objectives & content: clear goals, accurate content, key points highlighted, coherent structure.", Max: 15},
			{ID: "1_2", Point: "1.2 Lesson flow & activities: engaging lead-in, smooth transitions, sensible timing, activities support the goals.", Max: 15},
		},
	},
	{
		Category: "2. Classroom delivery & interaction (40)",
		Items: []Criterion{
			{ID: "2_1", Point: "2.1 Language & pronunciation: clear, fluent, well paced; natural intonation, no obvious errors.", Max: 15},
			{ID: "2_2", Point: "2.2 Methods & slides: varied, appropriate methods; clean slides that support teaching.", Max: 15},
			{ID: "2_3", Point: "2.3 Interaction & management: effective questioning and feedback, active participation, orderly classroom.", Max: 10},
		},
	},
	{
		Category: "3. Teacher competence (30)",
		Items: []Criterion{
			{ID: "3_1", Point: "3.1 Professional knowledge: knows the material and the learners, solid subject knowledge.", Max: 15},
			{ID: "3_2", Point: "3.2 Presence & rapport: appropriate appearance, energetic, natural and engaging manner.", Max: 15},
		},
	},
}

var criterionIndex = func() map[CriterionID]Criterion {
	idx := make(map[CriterionID]Criterion)
	for _, g := range Rubric {
		for _, c := range g.Items {
			idx[c.ID] = c
		}
	}
	return idx
}()

// Criteria returns every criterion in rubric order.
func Criteria() []Criterion {
	out := make([]Criterion, 0, len(criterionIndex))
	for _, g := range Rubric {
		out = append(out, g.Items...)
	}
	return out
}

func CriterionIDs() []CriterionID {
	criteria := Criteria()
	ids := make([]CriterionID, 0, len(criteria))
	for _, c := range criteria {
		ids = append(ids, c.ID)
	}
	return ids
}

func LookupCriterion(id CriterionID) (Criterion, bool) {
	c, ok := criterionIndex[id]
	return c, ok
}

// TeachingCategory selects the lesson model a candidate demonstrates.
type TeachingCategory string

const (
	CategoryPU0 TeachingCategory = "PU0"
	CategoryPU1 TeachingCategory = "PU1"
)

var teachingStages = map[TeachingCategory][]string{
	CategoryPU0: {"Greeting", "Warm-up", "Presentation", "Practice", "Production", "Summary"},
	CategoryPU1: {"Greeting", "Warm-up", "Pre-task", "Task cycle", "Post-task", "Summary"},
}

// StagesFor returns the selectable teaching stages of a category, or nil for an
// unknown category.
func StagesFor(c TeachingCategory) []string {
	stages, ok := teachingStages[c]
	if !ok {
		return nil
	}
	return append([]string(nil), stages...)
}

func (c TeachingCategory) Valid() bool {
	_, ok := teachingStages[c]
	return ok
}
