package scoring

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Averages maps each criterion to a mean score with one decimal place.
type Averages map[CriterionID]float64

// Sum adds every average and rounds the result to one decimal place.
func (a Averages) Sum() float64 {
	total := 0.0
	for _, id := range CriterionIDs() {
		total += a[id]
	}
	return Round1(total)
}

func (a Averages) clone() Averages {
	out := make(Averages, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Candidate is the computed view of every submission sharing one identity key.
// It is never persisted; operator corrections live in Override.
type Candidate struct {
	Key                 IdentityKey
	Members             []Submission
	DisplayName         string
	DisplayEnName       string
	DisplayOrganization string
	Averages            Averages
	FeedbackDigest      string
}

// Total is the sum of the rounded per-criterion averages, not the mean of totals.
func (c *Candidate) Total() float64 {
	return c.Averages.Sum()
}

func (c *Candidate) last() Submission {
	return c.Members[len(c.Members)-1]
}

const (
	feedbackSeparator = "\n\n---\n\n"
	systemJudge       = "系统"
)

// Aggregate groups submissions by identity key in input order and returns the
// groups sorted by key.
func Aggregate(subs []Submission) []*Candidate {
	groups := make(map[IdentityKey]*Candidate)
	keys := make([]IdentityKey, 0)

	for _, s := range subs {
		key := s.Key()
		c, ok := groups[key]
		if !ok {
			name := s.Name
			if name == "" {
				name = UnnamedCandidate
			}
			c = &Candidate{Key: key, DisplayName: name, DisplayEnName: s.EnName}
			groups[key] = c
			keys = append(keys, key)
		}
		// Names follow the most recent judge who typed one.
		if s.Name != "" {
			c.DisplayName = s.Name
		}
		if s.EnName != "" {
			c.DisplayEnName = s.EnName
		}
		c.Members = append(c.Members, s)
	}

	SortKeys(keys)
	out := make([]*Candidate, 0, len(keys))
	for _, key := range keys {
		c := groups[key]
		c.DisplayOrganization = firstOrganization(c.Members)
		c.Averages = averages(c.Members)
		c.FeedbackDigest = digest(c.Members)
		out = append(out, c)
	}
	return out
}

// firstOrganization keeps the earliest organization any judge entered. Names use
// last-non-empty instead.
func firstOrganization(members []Submission) string {
	for _, m := range members {
		if strings.TrimSpace(m.Organization) != "" {
			return m.Organization
		}
	}
	return ""
}

func averages(members []Submission) Averages {
	out := make(Averages, len(criterionIndex))
	n := float64(len(members))
	for _, id := range CriterionIDs() {
		sum := 0
		for _, m := range members {
			sum += m.Scores[id]
		}
		out[id] = Round1(float64(sum) / n)
	}
	return out
}

func digest(members []Submission) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if m.Feedback == "" {
			continue
		}
		judge := m.JudgeUsername
		if judge == "" {
			judge = systemJudge
		}
		parts = append(parts, fmt.Sprintf("【评委 %s】:\n%s", judge, m.Feedback))
	}
	return strings.Join(parts, feedbackSeparator)
}

// Round1 rounds to one decimal place from the exact binary value of v, half away
// from zero. 29/20 is stored just below 1.45 and becomes 1.4; 9/4 is exactly 2.25
// and becomes 2.3.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	x := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	x.Mul(x, big.NewFloat(10))
	n, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(x, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	tenths, _ := new(big.Float).SetInt(n).Float64()
	return math.Copysign(tenths/10, v)
}

// DeleteGroup splits subs into those kept and those whose identity key equals key.
// It uses the same resolver as Aggregate so deletion and grouping never disagree.
func DeleteGroup(subs []Submission, key IdentityKey) (kept, removed []Submission) {
	kept = make([]Submission, 0, len(subs))
	for _, s := range subs {
		if s.Key() == key {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, removed
}

// Stats summarizes the raw submissions and the aggregated view.
type Stats struct {
	Judgements   int     `json:"judgements"`
	Candidates   int     `json:"candidates"`
	MeanRawTotal float64 `json:"meanRawTotal"`
	HighestTotal float64 `json:"highestTotal"`
}

func Summarize(v *View, subs []Submission) Stats {
	st := Stats{Judgements: len(subs), Candidates: len(v.candidates)}
	if len(subs) > 0 {
		sum := 0
		for _, s := range subs {
			sum += s.TotalScore
		}
		st.MeanRawTotal = Round1(float64(sum) / float64(len(subs)))
	}
	for _, f := range v.Finals() {
		st.HighestTotal = math.Max(st.HighestTotal, f.Total)
	}
	return st
}

// unionStages returns each stage once, in the order members first selected it.
func unionStages(members []Submission) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range members {
		for _, st := range m.SelectedStages {
			if _, ok := seen[st]; ok {
				continue
			}
			seen[st] = struct{}{}
			out = append(out, st)
		}
	}
	return out
}
