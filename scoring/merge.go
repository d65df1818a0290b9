package scoring

// Merge reconciles two copies of the submission collection by record id.
//
// Local records are the baseline. A remote record is added when its id is unknown
// and replaces the local copy only when its LastUpdated is strictly later; equal or
// unparseable timestamps keep the local copy. The result lists local records in
// their original order followed by remote-only records in remote order.
func Merge(local, remote []Submission) []Submission {
	merged := make([]Submission, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))

	for _, s := range local {
		if i, ok := index[s.ID]; ok {
			merged[i] = s
			continue
		}
		index[s.ID] = len(merged)
		merged = append(merged, s)
	}

	for _, r := range remote {
		i, ok := index[r.ID]
		if !ok {
			index[r.ID] = len(merged)
			merged = append(merged, r)
			continue
		}
		if ParseTimestamp(r.LastUpdated).After(ParseTimestamp(merged[i].LastUpdated)) {
			merged[i] = r
		}
	}
	return merged
}

// MergeJudges keeps every local judge and appends remote judges whose id is new.
func MergeJudges(local, remote []Judge) []Judge {
	merged := make([]Judge, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))
	for _, j := range local {
		seen[j.ID] = struct{}{}
		merged = append(merged, j)
	}
	for _, j := range remote {
		if _, ok := seen[j.ID]; ok {
			continue
		}
		seen[j.ID] = struct{}{}
		merged = append(merged, j)
	}
	return merged
}
