package scoring

// Override holds operator corrections for one candidate. Once present it is never
// replaced by a recompute; only Reset brings the computed defaults back.
type Override struct {
	Name         string   `json:"name" dynamodbav:"Name"`
	EnName       string   `json:"enName" dynamodbav:"EnName"`
	Organization string   `json:"organization" dynamodbav:"Organization"`
	Averages     Averages `json:"averages" dynamodbav:"Averages"`
	Feedback     string   `json:"feedback" dynamodbav:"Feedback"`
}

func (o *Override) Clone() *Override {
	out := *o
	out.Averages = o.Averages.clone()
	return &out
}

// SetAverage stores an operator value for one criterion. Negative values become 0.
// It reports false for an unknown criterion.
func (o *Override) SetAverage(id CriterionID, v float64) bool {
	if _, ok := LookupCriterion(id); !ok {
		return false
	}
	if v < 0 {
		v = 0
	}
	if o.Averages == nil {
		o.Averages = Averages{}
	}
	o.Averages[id] = v
	return true
}

// Overrides is keyed by identity key. Entries for keys without members are kept.
type Overrides map[IdentityKey]*Override

func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		if v == nil {
			continue
		}
		out[k] = v.Clone()
	}
	return out
}

// DefaultOverride seeds corrections from freshly computed values. Names come from
// the last member as entered, which may be empty.
func DefaultOverride(c *Candidate) *Override {
	last := c.last()
	return &Override{
		Name:         last.Name,
		EnName:       last.EnName,
		Organization: c.DisplayOrganization,
		Averages:     c.Averages.clone(),
		Feedback:     c.FeedbackDigest,
	}
}

// View is the aggregated state after one recompute.
type View struct {
	candidates []*Candidate
	byKey      map[IdentityKey]*Candidate
	// Overrides contains every existing entry plus defaults seeded for new keys.
	Overrides Overrides
	// Seeded lists the keys that received a default override in this recompute.
	Seeded []IdentityKey
}

// Recompute aggregates subs and seeds overrides for keys that have none. It does
// not modify existing.
func Recompute(subs []Submission, existing Overrides) *View {
	candidates := Aggregate(subs)
	v := &View{
		candidates: candidates,
		byKey:      make(map[IdentityKey]*Candidate, len(candidates)),
		Overrides:  existing.Clone(),
	}
	for _, c := range candidates {
		v.byKey[c.Key] = c
		if _, ok := v.Overrides[c.Key]; ok {
			continue
		}
		v.Overrides[c.Key] = DefaultOverride(c)
		v.Seeded = append(v.Seeded, c.Key)
	}
	return v
}

func (v *View) Candidates() []*Candidate {
	return v.candidates
}

func (v *View) Candidate(key IdentityKey) (*Candidate, bool) {
	c, ok := v.byKey[key]
	return c, ok
}

// FinalCandidate is what reports and exports consume: computed values with the
// operator corrections applied.
type FinalCandidate struct {
	Key          IdentityKey      `json:"key"`
	Name         string           `json:"name"`
	EnName       string           `json:"enName"`
	Organization string           `json:"organization"`
	Group        string           `json:"group"`
	GroupIndex   string           `json:"groupIndex"`
	Category     TeachingCategory `json:"category"`
	Stages       []string         `json:"stages"`
	Averages     Averages         `json:"averages"`
	Total        float64          `json:"total"`
	Feedback     string           `json:"feedback"`
	JudgeCount   int              `json:"judgeCount"`
}

func (v *View) Final(key IdentityKey) (FinalCandidate, bool) {
	c, ok := v.byKey[key]
	if !ok {
		return FinalCandidate{}, false
	}
	return v.final(c), true
}

func (v *View) Finals() []FinalCandidate {
	out := make([]FinalCandidate, 0, len(v.candidates))
	for _, c := range v.candidates {
		out = append(out, v.final(c))
	}
	return out
}

func (v *View) final(c *Candidate) FinalCandidate {
	o := v.Overrides[c.Key]
	if o == nil {
		o = DefaultOverride(c)
	}
	first := c.Members[0]

	avg := make(Averages, len(criterionIndex))
	for _, id := range CriterionIDs() {
		avg[id] = o.Averages[id]
	}

	category := first.Category
	if category == "" {
		category = CategoryPU0
	}
	return FinalCandidate{
		Key:          c.Key,
		Name:         orDefault(o.Name, c.DisplayName),
		EnName:       orDefault(o.EnName, c.DisplayEnName),
		Organization: orDefault(o.Organization, c.DisplayOrganization),
		Group:        orDefault(first.Group, "?"),
		GroupIndex:   orDefault(first.GroupIndex, "?"),
		Category:     category,
		Stages:       unionStages(c.Members),
		Averages:     avg,
		Total:        avg.Sum(),
		Feedback:     o.Feedback,
		JudgeCount:   len(c.Members),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
